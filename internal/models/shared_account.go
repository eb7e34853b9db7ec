package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Member roles inside a shared account.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Invite statuses. Accepted and rejected are terminal.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRejected = "rejected"
)

// SharedAccount is a financial account with a single owner and a bounded set
// of member users. Exactly one member carries RoleOwner and its UserID matches
// OwnerID. Version is a monotonic token: member-list updates must compare and
// swap on it so concurrent edits cannot silently clobber each other.
type SharedAccount struct {
	ID             string                `gorm:"primaryKey" json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Type           string                `json:"type"` // checking, savings, investment, wallet, credit_card, other
	CurrentBalance decimal.Decimal       `gorm:"type:numeric" json:"current_balance"`
	Currency       string                `gorm:"default:EUR" json:"currency"`
	Color          string                `json:"color"`
	IBAN           string                `json:"iban,omitempty"`
	BIC            string                `json:"bic,omitempty"`
	OwnerID        uint                  `gorm:"index" json:"owner_id"`
	Order          int                   `json:"order"`
	Version        int64                 `json:"version"`
	Members        []SharedAccountMember `gorm:"foreignKey:SharedAccountID" json:"members"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (sa *SharedAccount) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == "" {
		sa.ID = uuid.New().String()
	}
	return nil
}

// Member lookup by user id; nil if absent.
func (sa *SharedAccount) Member(userID uint) *SharedAccountMember {
	for i := range sa.Members {
		if sa.Members[i].UserID == userID {
			return &sa.Members[i]
		}
	}
	return nil
}

type SharedAccountMember struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SharedAccountID string    `gorm:"index;uniqueIndex:idx_shared_member" json:"shared_account_id"`
	UserID          uint      `gorm:"uniqueIndex:idx_shared_member" json:"user_id"`
	Email           string    `json:"email"`
	Role            string    `json:"role"` // owner, member
	Position        int       `json:"position"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SharedAccountInvite is a proposal from an owner to a prospective member.
// At most one pending invite may exist per (shared account, invited user).
type SharedAccountInvite struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	SharedAccountID   string    `gorm:"index" json:"shared_account_id"`
	SharedAccountName string    `json:"shared_account_name"` // denormalized for listings
	InviterUserID     uint      `json:"inviter_user_id"`
	InviterEmail      string    `json:"inviter_email"`
	InviterName       string    `json:"inviter_name"`
	InvitedUserID     uint      `gorm:"index" json:"invited_user_id"`
	InvitedEmail      string    `json:"invited_email"`
	Status            string    `gorm:"default:pending" json:"status"` // pending, accepted, rejected
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (inv *SharedAccountInvite) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	return nil
}
