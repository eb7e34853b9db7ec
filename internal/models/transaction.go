package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Partition types move money between an account and its
// partitions and are neutral for the total balance, like transfers.
const (
	TxIncome                = "income"
	TxExpense               = "expense"
	TxTransfer              = "transfer"
	TxPartitionCreation     = "partition_creation"
	TxPartitionTransferTo   = "partition_transfer_to"
	TxPartitionTransferFrom = "partition_transfer_from"
)

type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index" json:"user_id"`
	AccountID   uint            `gorm:"index" json:"account_id"`
	ToAccountID *uint           `json:"to_account_id,omitempty"` // set for transfers
	Type        string          `json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric" json:"amount"` // always non-negative
	Currency    string          `gorm:"default:EUR" json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	IsRecurring bool            `json:"is_recurring"`
	Date        time.Time       `gorm:"index" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
