// Package plan holds the capacity policy and feature gating for subscription
// tiers. Numeric quotas come from the plan_limits table so admins can tune
// them without a deploy; feature gates are a fixed product table.
package plan

import (
	"errors"
	"fmt"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// ErrConfigMissing means a plan's limits were never administratively
// initialized. Distinct from a quota being exhausted: a paying user hitting
// this is a configuration error, not a product limit.
var ErrConfigMissing = errors.New("plan limits not configured")

// MemberCeiling is the hard upper bound on members per shared account,
// regardless of what the plan_limits row says.
const MemberCeiling = 10

type Limits struct {
	SharedAccounts             int `json:"shared_accounts"`
	MaxMembersPerSharedAccount int `json:"max_members_per_shared_account"`
}

// Policy answers quota questions for plan tiers. It is a snapshot of the
// plan_limits table; rebuild it after an admin update.
type Policy struct {
	limits map[string]Limits
}

func NewPolicy(rows []models.PlanLimits) *Policy {
	m := make(map[string]Limits, len(rows))
	for _, r := range rows {
		max := r.MaxMembersPerSharedAccount
		if max > MemberCeiling {
			max = MemberCeiling
		}
		m[r.Plan] = Limits{
			SharedAccounts:             r.SharedAccounts,
			MaxMembersPerSharedAccount: max,
		}
	}
	return &Policy{limits: m}
}

// LimitsFor returns the configured limits for a plan. A plan with no row is a
// configuration error, never silently a zero quota.
func (p *Policy) LimitsFor(plan string) (Limits, error) {
	l, ok := p.limits[plan]
	if !ok {
		return Limits{}, fmt.Errorf("%w: %s", ErrConfigMissing, plan)
	}
	return l, nil
}

// Defaults are the rows seeded at first migration. Free users cannot create
// or join shared accounts at all.
func Defaults() []models.PlanLimits {
	return []models.PlanLimits{
		{Plan: models.PlanFree, SharedAccounts: 0, MaxMembersPerSharedAccount: 0},
		{Plan: models.PlanPro, SharedAccounts: 2, MaxMembersPerSharedAccount: 5},
		{Plan: models.PlanUltra, SharedAccounts: 10, MaxMembersPerSharedAccount: 10},
		{Plan: models.PlanAdmin, SharedAccounts: 25, MaxMembersPerSharedAccount: 10},
	}
}
