package shared

import "errors"

// Domain errors. These are business-level failures, surfaced directly to the
// caller and mapped to HTTP status codes by the handler layer. None are
// retried automatically.
var (
	// ErrPermissionDenied: the acting user lacks owner rights for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrQuotaExceeded: the acting user's plan allows no more shared accounts.
	ErrQuotaExceeded = errors.New("shared account quota exceeded")

	// ErrCapacityExceeded: the account's member list is at its plan-defined max.
	ErrCapacityExceeded = errors.New("member capacity exceeded")

	// ErrInviteeQuotaExceeded: the invitee's own plan quota is already exhausted.
	ErrInviteeQuotaExceeded = errors.New("invitee shared account quota exceeded")

	// ErrDuplicateInvite: a pending invite for this account and user already exists.
	ErrDuplicateInvite = errors.New("pending invite already exists")

	// ErrAlreadyMember: the user is already on the account's member list.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrInviteNotPending: the invite was already accepted, rejected or cancelled.
	ErrInviteNotPending = errors.New("invite is not pending")

	// ErrOwnerCannotLeave: owners must delete the account instead of leaving it.
	ErrOwnerCannotLeave = errors.New("owner cannot leave shared account")

	// ErrCannotRemoveOwner: the owner cannot be removed from the member list.
	ErrCannotRemoveOwner = errors.New("cannot remove the owner")

	// ErrNotFound: account or invite does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the account changed since it was read; re-read and retry.
	ErrConflict = errors.New("concurrent modification")

	// ErrInvalidOperation: the request is structurally nonsensical (e.g. self-invite).
	ErrInvalidOperation = errors.New("invalid operation")
)
