package shared

import (
	"context"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// Store is the persistence boundary of the shared-account service. It is
// plain document-style CRUD plus two stronger primitives: ReplaceMembers is a
// compare-and-swap on the account version, and DeleteAccountCascade is an
// all-or-nothing batch over the account and its invites. Swapping the backend
// does not touch the service layer.
type Store interface {
	// CreateAccount persists a new account together with its initial member
	// rows. The account ID is populated by the store if empty.
	CreateAccount(ctx context.Context, account *models.SharedAccount) error

	// GetAccount returns an account with its member list, or ErrNotFound.
	GetAccount(ctx context.Context, id string) (*models.SharedAccount, error)

	// ListAccountsForUser returns every account the user is a member of,
	// ordered by the user's display order.
	ListAccountsForUser(ctx context.Context, userID uint) ([]models.SharedAccount, error)

	// CountAccountsForUser returns how many shared accounts the user belongs to.
	CountAccountsForUser(ctx context.Context, userID uint) (int, error)

	// ReplaceMembers swaps the full member list iff the stored version still
	// equals version, bumping the version by one. Returns ErrConflict on a
	// version mismatch and ErrNotFound if the account is gone.
	ReplaceMembers(ctx context.Context, accountID string, version int64, members []models.SharedAccountMember) error

	// SetAccountOrder sets the display order of one account.
	SetAccountOrder(ctx context.Context, accountID string, order int) error

	// DeleteAccountCascade removes the account, its members and every invite
	// referencing it as a single atomic batch.
	DeleteAccountCascade(ctx context.Context, accountID string) error

	// CreateInvite persists a new invite. The ID is populated if empty.
	CreateInvite(ctx context.Context, invite *models.SharedAccountInvite) error

	// GetInvite returns an invite by ID, or ErrNotFound.
	GetInvite(ctx context.Context, id string) (*models.SharedAccountInvite, error)

	// PendingInvite returns the pending invite for (account, invited user),
	// or ErrNotFound if there is none.
	PendingInvite(ctx context.Context, accountID string, invitedUserID uint) (*models.SharedAccountInvite, error)

	// ListInvitesForUser returns invites addressed to the user, newest first.
	ListInvitesForUser(ctx context.Context, userID uint) ([]models.SharedAccountInvite, error)

	// TransitionInvite moves an invite from status `from` to status `to`.
	// Returns ErrInviteNotPending if the invite is no longer in `from`.
	TransitionInvite(ctx context.Context, id, from, to string) error

	// DeleteInvite removes a single invite.
	DeleteInvite(ctx context.Context, id string) error

	// UserByEmail resolves a user by exact email, or ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UserByID resolves a user by ID, or ErrNotFound.
	UserByID(ctx context.Context, id uint) (*models.User, error)

	// PlanLimits returns all configured plan limit rows.
	PlanLimits(ctx context.Context) ([]models.PlanLimits, error)
}
