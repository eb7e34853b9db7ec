package http

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// POST /v1/billing/checkout
func (s *Server) billingCheckout(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		Plan       string `json:"plan" binding:"required"`
		SuccessURL string `json:"success_url" binding:"required,url"`
		CancelURL  string `json:"cancel_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if input.Plan != models.PlanPro && input.Plan != models.PlanUltra {
		c.JSON(400, gin.H{"error": "invalid_plan"})
		return
	}

	session, err := s.billing.CreateCheckoutSession(user, input.Plan, input.SuccessURL, input.CancelURL)
	if err != nil {
		c.JSON(502, gin.H{"error": "checkout_failed"})
		return
	}

	c.JSON(200, gin.H{"session_id": session.ID, "url": session.URL})
}

// POST /v1/billing/cancel
func (s *Server) billingCancel(c *gin.Context) {
	user := currentUser(c)

	if err := s.billing.CancelSubscription(user); err != nil {
		c.JSON(502, gin.H{"error": "cancel_failed", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "subscription cancelled", "plan": models.PlanFree})
}

// GET /v1/billing/verify — re-sync the plan tier with Stripe.
func (s *Server) billingVerify(c *gin.Context) {
	user := currentUser(c)

	tier, err := s.billing.VerifySubscription(user)
	if err != nil {
		c.JSON(502, gin.H{"error": "verify_failed"})
		return
	}

	c.JSON(200, gin.H{"plan": tier})
}

// POST /v1/billing/webhook — Stripe event delivery. The payload is checked
// against the event schema, then the signature is verified before dispatch.
func (s *Server) billingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read body"})
		return
	}

	res, err := s.eventSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil || !res.Valid() {
		c.JSON(400, gin.H{"error": "invalid_event_payload"})
		return
	}

	event, err := s.billing.VerifySignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_signature"})
		return
	}

	if err := s.billing.HandleEvent(event); err != nil {
		slog.Error("webhook handling failed", "type", event.Type, "error", err)
		c.JSON(500, gin.H{"error": "event_handling_failed"})
		return
	}

	c.JSON(200, gin.H{"received": true})
}
