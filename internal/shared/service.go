// Package shared implements the shared-account membership and invite
// lifecycle: create, invite, accept, reject, cancel, leave, remove, delete
// and reorder, with plan-based capacity limits.
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AccountData carries the caller-supplied fields for a new shared account.
type AccountData struct {
	Name           string
	Description    string
	Type           string
	CurrentBalance decimal.Decimal
	Currency       string
	Color          string
	IBAN           string
	BIC            string
}

// InviteResult reports the outcome of one invite in a create fan-out.
type InviteResult struct {
	Email  string                      `json:"email"`
	Invite *models.SharedAccountInvite `json:"invite,omitempty"`
	Err    string                      `json:"error,omitempty"`
}

// CreateResult is the outcome of Create: the new account plus the per-invitee
// outcome of the initial invite fan-out. A failed invite does not fail the
// creation; the caller retries it by re-inviting.
type CreateResult struct {
	Account       *models.SharedAccount `json:"account"`
	InviteResults []InviteResult        `json:"invite_results,omitempty"`
}

func (s *Service) policy(ctx context.Context) (*plan.Policy, error) {
	rows, err := s.store.PlanLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plan limits: %w", err)
	}
	return plan.NewPolicy(rows), nil
}

// Create makes a new shared account owned by owner, with the owner as its
// only member, then best-effort sends invites to each initial invitee in
// sequence. The owner's plan quota is checked first.
func (s *Service) Create(ctx context.Context, owner *models.User, data AccountData, inviteeEmails []string) (*CreateResult, error) {
	pol, err := s.policy(ctx)
	if err != nil {
		return nil, err
	}
	limits, err := pol.LimitsFor(owner.Plan)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountAccountsForUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if count >= limits.SharedAccounts {
		return nil, ErrQuotaExceeded
	}

	account := &models.SharedAccount{
		Name:           data.Name,
		Description:    data.Description,
		Type:           data.Type,
		CurrentBalance: data.CurrentBalance,
		Currency:       data.Currency,
		Color:          data.Color,
		IBAN:           data.IBAN,
		BIC:            data.BIC,
		OwnerID:        owner.ID,
		Order:          count,
		Members: []models.SharedAccountMember{
			{UserID: owner.ID, Email: owner.Email, Role: models.RoleOwner},
		},
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	slog.Info("shared account created", "account_id", account.ID, "owner_id", owner.ID)

	res := &CreateResult{Account: account}
	for _, email := range inviteeEmails {
		inv, err := s.Invite(ctx, account.ID, owner, email)
		r := InviteResult{Email: email, Invite: inv}
		if err != nil {
			r.Err = err.Error()
			slog.Warn("initial invite failed", "account_id", account.ID, "email", email, "error", err)
		}
		res.InviteResults = append(res.InviteResults, r)
	}
	return res, nil
}

// Invite proposes membership to the user behind inviteeEmail. Preconditions
// are checked in a fixed order so callers get stable error behavior: owner
// rights, duplicate pending invite, account capacity, invitee quota, existing
// membership.
func (s *Service) Invite(ctx context.Context, accountID string, inviter *models.User, inviteeEmail string) (*models.SharedAccountInvite, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != inviter.ID {
		return nil, ErrPermissionDenied
	}

	invitee, err := s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(inviteeEmail)))
	if err != nil {
		return nil, err
	}
	if invitee.ID == inviter.ID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrInvalidOperation)
	}

	if _, err := s.store.PendingInvite(ctx, accountID, invitee.ID); err == nil {
		return nil, ErrDuplicateInvite
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	pol, err := s.policy(ctx)
	if err != nil {
		return nil, err
	}
	limits, err := pol.LimitsFor(inviter.Plan)
	if err != nil {
		return nil, err
	}
	if len(account.Members) >= limits.MaxMembersPerSharedAccount {
		return nil, ErrCapacityExceeded
	}

	inviteeLimits, err := pol.LimitsFor(invitee.Plan)
	if err != nil {
		return nil, err
	}
	inviteeCount, err := s.store.CountAccountsForUser(ctx, invitee.ID)
	if err != nil {
		return nil, err
	}
	if inviteeCount >= inviteeLimits.SharedAccounts {
		return nil, ErrInviteeQuotaExceeded
	}

	if account.Member(invitee.ID) != nil {
		return nil, ErrAlreadyMember
	}

	invite := &models.SharedAccountInvite{
		SharedAccountID:   account.ID,
		SharedAccountName: account.Name,
		InviterUserID:     inviter.ID,
		InviterEmail:      inviter.Email,
		InviterName:       inviter.Name,
		InvitedUserID:     invitee.ID,
		InvitedEmail:      invitee.Email,
		Status:            models.InvitePending,
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	slog.Info("invite created", "invite_id", invite.ID, "account_id", account.ID, "invited_user_id", invitee.ID)
	return invite, nil
}

// AcceptInvite transitions a pending invite to accepted and appends the
// invitee to the account's member list. Only the invited user may accept.
func (s *Service) AcceptInvite(ctx context.Context, inviteID string, actor *models.User) (*models.SharedAccount, error) {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.InvitedUserID != actor.ID {
		return nil, ErrPermissionDenied
	}
	if invite.Status != models.InvitePending {
		return nil, ErrInviteNotPending
	}

	account, err := s.store.GetAccount(ctx, invite.SharedAccountID)
	if err != nil {
		return nil, err
	}
	if account.Member(actor.ID) != nil {
		return nil, ErrAlreadyMember
	}

	pol, err := s.policy(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.UserByID(ctx, account.OwnerID)
	if err != nil {
		return nil, err
	}
	ownerLimits, err := pol.LimitsFor(owner.Plan)
	if err != nil {
		return nil, err
	}
	if len(account.Members) >= ownerLimits.MaxMembersPerSharedAccount {
		return nil, ErrCapacityExceeded
	}

	actorLimits, err := pol.LimitsFor(actor.Plan)
	if err != nil {
		return nil, err
	}
	actorCount, err := s.store.CountAccountsForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if actorCount >= actorLimits.SharedAccounts {
		return nil, ErrQuotaExceeded
	}

	members := append(append([]models.SharedAccountMember{}, account.Members...), models.SharedAccountMember{
		SharedAccountID: account.ID,
		UserID:          actor.ID,
		Email:           actor.Email,
		Role:            models.RoleMember,
		Position:        len(account.Members),
	})
	if err := s.store.ReplaceMembers(ctx, account.ID, account.Version, members); err != nil {
		return nil, err
	}
	if err := s.store.TransitionInvite(ctx, invite.ID, models.InvitePending, models.InviteAccepted); err != nil {
		return nil, err
	}
	slog.Info("invite accepted", "invite_id", invite.ID, "account_id", account.ID, "user_id", actor.ID)

	return s.store.GetAccount(ctx, account.ID)
}

// RejectInvite transitions a pending invite to rejected. Terminal: no
// further transitions are permitted.
func (s *Service) RejectInvite(ctx context.Context, inviteID string, actor *models.User) error {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.InvitedUserID != actor.ID {
		return ErrPermissionDenied
	}
	if err := s.store.TransitionInvite(ctx, invite.ID, models.InvitePending, models.InviteRejected); err != nil {
		return err
	}
	slog.Info("invite rejected", "invite_id", invite.ID, "user_id", actor.ID)
	return nil
}

// CancelInvite lets the inviter withdraw a still-pending invite.
func (s *Service) CancelInvite(ctx context.Context, inviteID string, actor *models.User) error {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.InviterUserID != actor.ID {
		return ErrPermissionDenied
	}
	if invite.Status != models.InvitePending {
		return ErrInviteNotPending
	}
	if err := s.store.DeleteInvite(ctx, invite.ID); err != nil {
		return err
	}
	slog.Info("invite cancelled", "invite_id", invite.ID, "user_id", actor.ID)
	return nil
}

// Leave removes the acting user from the member list. The owner cannot
// leave; deleting the account is the owner's exit.
func (s *Service) Leave(ctx context.Context, accountID string, user *models.User) error {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.OwnerID == user.ID {
		return ErrOwnerCannotLeave
	}
	if account.Member(user.ID) == nil {
		return ErrNotFound
	}
	members := withoutMember(account.Members, user.ID)
	if err := s.store.ReplaceMembers(ctx, account.ID, account.Version, members); err != nil {
		return err
	}
	slog.Info("member left shared account", "account_id", account.ID, "user_id", user.ID)
	return nil
}

// RemoveMember lets the owner remove a non-owner member.
func (s *Service) RemoveMember(ctx context.Context, accountID string, memberUserID uint, requester *models.User) error {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.OwnerID != requester.ID {
		return ErrPermissionDenied
	}
	if memberUserID == account.OwnerID {
		return ErrCannotRemoveOwner
	}
	if account.Member(memberUserID) == nil {
		return ErrNotFound
	}
	members := withoutMember(account.Members, memberUserID)
	if err := s.store.ReplaceMembers(ctx, account.ID, account.Version, members); err != nil {
		return err
	}
	slog.Info("member removed", "account_id", account.ID, "user_id", memberUserID, "by", requester.ID)
	return nil
}

// Delete removes the account and every invite referencing it as one atomic
// batch. Owner only.
func (s *Service) Delete(ctx context.Context, accountID string, requester *models.User) error {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.OwnerID != requester.ID {
		return ErrPermissionDenied
	}
	if err := s.store.DeleteAccountCascade(ctx, account.ID); err != nil {
		return err
	}
	slog.Info("shared account deleted", "account_id", account.ID, "owner_id", requester.ID)
	return nil
}

// Reorder assigns sequential display positions following orderedIDs. IDs the
// user is not a member of are silently skipped.
func (s *Service) Reorder(ctx context.Context, user *models.User, orderedIDs []string) error {
	accounts, err := s.store.ListAccountsForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	mine := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		mine[a.ID] = true
	}
	pos := 0
	for _, id := range orderedIDs {
		if !mine[id] {
			continue
		}
		if err := s.store.SetAccountOrder(ctx, id, pos); err != nil {
			return err
		}
		pos++
	}
	return nil
}

// ListForUser returns the accounts the user belongs to.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.SharedAccount, error) {
	return s.store.ListAccountsForUser(ctx, userID)
}

// ListInvites returns invites addressed to the user.
func (s *Service) ListInvites(ctx context.Context, userID uint) ([]models.SharedAccountInvite, error) {
	return s.store.ListInvitesForUser(ctx, userID)
}

// Get returns one account if the user is a member; otherwise ErrNotFound so
// account existence is not leaked to outsiders.
func (s *Service) Get(ctx context.Context, accountID string, userID uint) (*models.SharedAccount, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Member(userID) == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

func withoutMember(members []models.SharedAccountMember, userID uint) []models.SharedAccountMember {
	out := make([]models.SharedAccountMember, 0, len(members))
	for _, m := range members {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	return out
}
