package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"github.com/federicodonati07/fintrack-sub001/internal/auth"
	"github.com/federicodonati07/fintrack-sub001/internal/billing"
	"github.com/federicodonati07/fintrack-sub001/internal/config"
	"github.com/federicodonati07/fintrack-sub001/internal/database"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
	"github.com/federicodonati07/fintrack-sub001/internal/shared"
)

type Server struct {
	cfg         *config.Config
	jwt         *auth.JWTManager
	shared      *shared.Service
	billing     *billing.Client
	txSchema    *gojsonschema.Schema
	eventSchema *gojsonschema.Schema
}

func NewServer(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging())
	r.Use(metrics())

	txSchema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://./schemas/transaction_import.schema.json"))
	if err != nil {
		panic(err)
	}
	eventSchema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://./schemas/stripe_event.schema.json"))
	if err != nil {
		panic(err)
	}

	s := &Server{
		cfg:         cfg,
		jwt:         auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		shared:      shared.NewService(shared.NewGormStore(database.DB)),
		billing:     billing.New(cfg, database.DB),
		txSchema:    txSchema,
		eventSchema: eventSchema,
	}

	// Auth
	r.POST("/v1/auth/register", s.authRegister)
	r.POST("/v1/auth/login", s.authLogin)

	// Billing webhook (signature-verified, not bearer-authenticated)
	r.POST("/v1/billing/webhook", s.billingWebhook)

	// Protected Routes (User Token)
	authorized := r.Group("/v1")
	authorized.Use(AuthMiddleware(s.jwt))
	{
		authorized.POST("/accounts", s.createAccount)
		authorized.GET("/accounts", s.listAccounts)
		authorized.PUT("/accounts/order", s.reorderAccounts)
		authorized.GET("/accounts/:id", s.getAccount)
		authorized.PUT("/accounts/:id", s.updateAccount)
		authorized.DELETE("/accounts/:id", s.deleteAccount)

		authorized.POST("/transactions", s.createTransaction)
		authorized.GET("/transactions", s.listTransactions)
		authorized.POST("/transactions/import", s.importTransactions)
		authorized.GET("/transactions/:id", s.getTransaction)
		authorized.PUT("/transactions/:id", s.updateTransaction)
		authorized.DELETE("/transactions/:id", s.deleteTransaction)

		authorized.POST("/shared-accounts", s.createSharedAccount)
		authorized.GET("/shared-accounts", s.listSharedAccounts)
		authorized.PUT("/shared-accounts/order", s.reorderSharedAccounts)
		authorized.GET("/shared-accounts/:id", s.getSharedAccount)
		authorized.DELETE("/shared-accounts/:id", s.deleteSharedAccount)
		authorized.POST("/shared-accounts/:id/invites", s.createInvite)
		authorized.POST("/shared-accounts/:id/leave", s.leaveSharedAccount)
		authorized.DELETE("/shared-accounts/:id/members/:userId", s.removeMember)

		authorized.GET("/invites", s.listInvites)
		authorized.POST("/invites/:id/accept", s.acceptInvite)
		authorized.POST("/invites/:id/reject", s.rejectInvite)
		authorized.DELETE("/invites/:id", s.cancelInvite)

		authorized.GET("/analytics/balance-history", s.balanceHistory)
		authorized.GET("/analytics/projection", s.balanceProjection)
		authorized.GET("/analytics/insights", s.getInsights)

		authorized.POST("/billing/checkout", s.billingCheckout)
		authorized.POST("/billing/cancel", s.billingCancel)
		authorized.GET("/billing/verify", s.billingVerify)

		admin := authorized.Group("/admin")
		admin.Use(AdminOnly())
		{
			admin.GET("/users", s.adminListUsers)
			admin.PUT("/plan-limits/:plan", s.adminSetPlanLimits)
		}
	}

	r.GET("/metrics", metricsHandler())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

// statusFor maps domain errors to HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, shared.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, shared.ErrQuotaExceeded):
		return http.StatusConflict, "quota_exceeded"
	case errors.Is(err, shared.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, shared.ErrInviteeQuotaExceeded):
		return http.StatusConflict, "invitee_quota_exceeded"
	case errors.Is(err, shared.ErrDuplicateInvite):
		return http.StatusConflict, "duplicate_invite"
	case errors.Is(err, shared.ErrAlreadyMember):
		return http.StatusConflict, "already_member"
	case errors.Is(err, shared.ErrInviteNotPending):
		return http.StatusConflict, "invite_not_pending"
	case errors.Is(err, shared.ErrOwnerCannotLeave):
		return http.StatusConflict, "owner_cannot_leave"
	case errors.Is(err, shared.ErrCannotRemoveOwner):
		return http.StatusConflict, "cannot_remove_owner"
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, shared.ErrInvalidOperation):
		return http.StatusUnprocessableEntity, "invalid_operation"
	case errors.Is(err, plan.ErrConfigMissing):
		return http.StatusInternalServerError, "plan_limits_not_configured"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Stripe-Signature")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
