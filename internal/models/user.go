package models

import (
	"time"
)

// Plan tiers, ordered from least to most capable.
const (
	PlanFree  = "free"
	PlanPro   = "pro"
	PlanUltra = "ultra"
	PlanAdmin = "admin"
)

type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Email                string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash         string    `json:"-"` // Bcrypt hash, hidden from JSON
	Name                 string    `json:"name"`
	Plan                 string    `gorm:"default:free" json:"plan"` // free, pro, ultra, admin
	StripeCustomerID     string    `json:"-"`
	StripeSubscriptionID string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
