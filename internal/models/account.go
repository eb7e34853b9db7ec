package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index" json:"user_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"` // checking, savings, investment, wallet, credit_card, other
	Balance   decimal.Decimal `gorm:"type:numeric" json:"balance"`
	Currency  string          `gorm:"default:EUR" json:"currency"`
	Color     string          `json:"color"`
	IsDefault bool            `json:"is_default"`
	Order     int             `json:"order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
