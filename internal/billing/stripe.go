// Package billing glues the subscription lifecycle to Stripe. Plan changes
// land on the user row and take effect on the next request through the
// capacity policy.
package billing

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/federicodonati07/fintrack-sub001/internal/config"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

type Client struct {
	cfg *config.Config
	db  *gorm.DB
}

func New(cfg *config.Config, db *gorm.DB) *Client {
	stripe.Key = cfg.StripeSecretKey
	return &Client{cfg: cfg, db: db}
}

func (c *Client) priceFor(planTier string) (string, error) {
	switch planTier {
	case models.PlanPro:
		return c.cfg.StripePricePro, nil
	case models.PlanUltra:
		return c.cfg.StripePriceUltra, nil
	}
	return "", fmt.Errorf("no price configured for plan %q", planTier)
}

func (c *Client) planForPrice(priceID string) string {
	switch priceID {
	case c.cfg.StripePricePro:
		return models.PlanPro
	case c.cfg.StripePriceUltra:
		return models.PlanUltra
	}
	return models.PlanFree
}

// CreateCheckoutSession starts a subscription checkout for the given plan and
// returns the hosted checkout URL.
func (c *Client) CreateCheckoutSession(user *models.User, planTier, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	price, err := c.priceFor(planTier)
	if err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(fmt.Sprint(user.ID)),
	}
	return session.New(params)
}

// CancelSubscription cancels the user's active subscription and drops them
// back to the free tier.
func (c *Client) CancelSubscription(user *models.User) error {
	if user.StripeSubscriptionID == "" {
		return fmt.Errorf("no active subscription")
	}
	if _, err := subscription.Cancel(user.StripeSubscriptionID, nil); err != nil {
		return err
	}
	return c.setPlan(user.ID, models.PlanFree, user.StripeCustomerID, "")
}

// VerifySubscription re-reads the subscription from Stripe and syncs the
// user's plan tier with what Stripe believes. Returns the effective plan.
func (c *Client) VerifySubscription(user *models.User) (string, error) {
	if user.StripeSubscriptionID == "" {
		return models.PlanFree, nil
	}
	sub, err := subscription.Get(user.StripeSubscriptionID, nil)
	if err != nil {
		return "", err
	}
	tier := models.PlanFree
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			tier = c.planForPrice(sub.Items.Data[0].Price.ID)
		}
	}
	if err := c.setPlan(user.ID, tier, user.StripeCustomerID, user.StripeSubscriptionID); err != nil {
		return "", err
	}
	return tier, nil
}

// VerifySignature checks the Stripe-Signature header and returns the parsed
// event.
func (c *Client) VerifySignature(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.StripeWebhookSecret)
}

// HandleEvent applies a verified webhook event to the user's plan tier.
// Unknown event types are ignored.
func (c *Client) HandleEvent(event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return fmt.Errorf("parse checkout session: %w", err)
		}
		return c.applyCheckout(&cs)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		return c.applySubscription(&sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		return c.clearSubscription(&sub)
	}
	slog.Debug("ignoring webhook event", "type", event.Type)
	return nil
}

func (c *Client) applyCheckout(cs *stripe.CheckoutSession) error {
	var user models.User
	if err := c.db.Where("id = ?", cs.ClientReferenceID).First(&user).Error; err != nil {
		return fmt.Errorf("checkout for unknown user %q: %w", cs.ClientReferenceID, err)
	}
	if cs.Customer != nil {
		user.StripeCustomerID = cs.Customer.ID
	}
	if cs.Subscription != nil {
		user.StripeSubscriptionID = cs.Subscription.ID
	}
	if err := c.db.Save(&user).Error; err != nil {
		return err
	}
	tier, err := c.VerifySubscription(&user)
	if err != nil {
		return err
	}
	slog.Info("checkout completed", "user_id", user.ID, "plan", tier)
	return nil
}

func (c *Client) applySubscription(sub *stripe.Subscription) error {
	var user models.User
	if err := c.db.Where("stripe_subscription_id = ?", sub.ID).First(&user).Error; err != nil {
		slog.Warn("subscription update for unknown user", "subscription_id", sub.ID)
		return nil
	}
	tier := models.PlanFree
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			tier = c.planForPrice(sub.Items.Data[0].Price.ID)
		}
	}
	slog.Info("subscription updated", "user_id", user.ID, "plan", tier, "status", sub.Status)
	return c.setPlan(user.ID, tier, user.StripeCustomerID, sub.ID)
}

func (c *Client) clearSubscription(sub *stripe.Subscription) error {
	var user models.User
	if err := c.db.Where("stripe_subscription_id = ?", sub.ID).First(&user).Error; err != nil {
		return nil
	}
	slog.Info("subscription deleted", "user_id", user.ID)
	return c.setPlan(user.ID, models.PlanFree, user.StripeCustomerID, "")
}

func (c *Client) setPlan(userID uint, tier, customerID, subscriptionID string) error {
	// Admin is assigned manually and never managed by Stripe.
	return c.db.Model(&models.User{}).Where("id = ? AND plan <> ?", userID, models.PlanAdmin).Updates(map[string]any{
		"plan":                   tier,
		"stripe_customer_id":     customerID,
		"stripe_subscription_id": subscriptionID,
	}).Error
}
