package models

import "time"

// PlanLimits holds the numeric quotas for one plan tier. Rows are managed by
// admins; the shared-account service only reads them.
type PlanLimits struct {
	Plan                       string    `gorm:"primaryKey" json:"plan"`
	SharedAccounts             int       `json:"shared_accounts"`                 // max shared accounts a user may belong to
	MaxMembersPerSharedAccount int       `json:"max_members_per_shared_account"` // hard ceiling 10
	UpdatedAt                  time.Time `json:"updated_at"`
}
