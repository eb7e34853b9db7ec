package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
)

// memStore is an in-memory Store for exercising the service without a
// database. Semantics mirror GormStore, including the version CAS.
type memStore struct {
	accounts map[string]*models.SharedAccount
	invites  map[string]*models.SharedAccountInvite
	users    map[uint]*models.User
	limits   []models.PlanLimits
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*models.SharedAccount),
		invites:  make(map[string]*models.SharedAccountInvite),
		users:    make(map[uint]*models.User),
		limits:   plan.Defaults(),
	}
}

func (m *memStore) CreateAccount(_ context.Context, account *models.SharedAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	cp := *account
	cp.Members = append([]models.SharedAccountMember{}, account.Members...)
	m.accounts[account.ID] = &cp
	return nil
}

func (m *memStore) GetAccount(_ context.Context, id string) (*models.SharedAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	cp.Members = append([]models.SharedAccountMember{}, a.Members...)
	return &cp, nil
}

func (m *memStore) ListAccountsForUser(_ context.Context, userID uint) ([]models.SharedAccount, error) {
	var out []models.SharedAccount
	for _, a := range m.accounts {
		for _, mem := range a.Members {
			if mem.UserID == userID {
				cp := *a
				cp.Members = append([]models.SharedAccountMember{}, a.Members...)
				out = append(out, cp)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) CountAccountsForUser(ctx context.Context, userID uint) (int, error) {
	accounts, _ := m.ListAccountsForUser(ctx, userID)
	return len(accounts), nil
}

func (m *memStore) ReplaceMembers(_ context.Context, accountID string, version int64, members []models.SharedAccountMember) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	if a.Version != version {
		return ErrConflict
	}
	a.Version++
	a.Members = append([]models.SharedAccountMember{}, members...)
	return nil
}

func (m *memStore) SetAccountOrder(_ context.Context, accountID string, order int) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.Order = order
	return nil
}

func (m *memStore) DeleteAccountCascade(_ context.Context, accountID string) error {
	if _, ok := m.accounts[accountID]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, accountID)
	for id, inv := range m.invites {
		if inv.SharedAccountID == accountID {
			delete(m.invites, id)
		}
	}
	return nil
}

func (m *memStore) CreateInvite(_ context.Context, invite *models.SharedAccountInvite) error {
	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	cp := *invite
	m.invites[invite.ID] = &cp
	return nil
}

func (m *memStore) GetInvite(_ context.Context, id string) (*models.SharedAccountInvite, error) {
	inv, ok := m.invites[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memStore) PendingInvite(_ context.Context, accountID string, invitedUserID uint) (*models.SharedAccountInvite, error) {
	for _, inv := range m.invites {
		if inv.SharedAccountID == accountID && inv.InvitedUserID == invitedUserID && inv.Status == models.InvitePending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListInvitesForUser(_ context.Context, userID uint) ([]models.SharedAccountInvite, error) {
	var out []models.SharedAccountInvite
	for _, inv := range m.invites {
		if inv.InvitedUserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memStore) TransitionInvite(_ context.Context, id, from, to string) error {
	inv, ok := m.invites[id]
	if !ok || inv.Status != from {
		return ErrInviteNotPending
	}
	inv.Status = to
	return nil
}

func (m *memStore) DeleteInvite(_ context.Context, id string) error {
	delete(m.invites, id)
	return nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) PlanLimits(_ context.Context) ([]models.PlanLimits, error) {
	return m.limits, nil
}

func (m *memStore) addUser(id uint, email, tier string) *models.User {
	u := &models.User{ID: id, Email: email, Plan: tier}
	m.users[id] = u
	return u
}

func setup(t *testing.T) (*Service, *memStore, *models.User, *models.User) {
	t.Helper()
	store := newMemStore()
	owner := store.addUser(1, "owner@example.com", models.PlanUltra)
	member := store.addUser(2, "member@example.com", models.PlanPro)
	return NewService(store), store, owner, member
}

func mustCreate(t *testing.T, s *Service, owner *models.User, name string) *models.SharedAccount {
	t.Helper()
	res, err := s.Create(context.Background(), owner, AccountData{Name: name, Type: "checking"}, nil)
	if err != nil {
		t.Fatalf("Create(%s) err=%v", name, err)
	}
	return res.Account
}

func mustInvite(t *testing.T, s *Service, accountID string, inviter *models.User, email string) *models.SharedAccountInvite {
	t.Helper()
	inv, err := s.Invite(context.Background(), accountID, inviter, email)
	if err != nil {
		t.Fatalf("Invite(%s) err=%v", email, err)
	}
	return inv
}

func TestCreateStartsWithOnlyOwner(t *testing.T) {
	s, _, owner, _ := setup(t)

	account := mustCreate(t, s, owner, "Household")
	if len(account.Members) != 1 {
		t.Fatalf("members len=%d want=1", len(account.Members))
	}
	m := account.Members[0]
	if m.Role != models.RoleOwner || m.UserID != owner.ID {
		t.Fatalf("got member %+v, want owner role with user %d", m, owner.ID)
	}
	if account.OwnerID != owner.ID {
		t.Fatalf("owner id=%d want=%d", account.OwnerID, owner.ID)
	}
}

func TestCreateQuotaExceededOnFreePlan(t *testing.T) {
	s, store, _, _ := setup(t)
	free := store.addUser(3, "free@example.com", models.PlanFree)

	_, err := s.Create(context.Background(), free, AccountData{Name: "Nope"}, nil)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("want ErrQuotaExceeded, got %v", err)
	}
}

func TestCreateUnknownPlanIsConfigError(t *testing.T) {
	s, store, _, _ := setup(t)
	odd := store.addUser(4, "odd@example.com", "platinum")

	_, err := s.Create(context.Background(), odd, AccountData{Name: "Nope"}, nil)
	if !errors.Is(err, plan.ErrConfigMissing) {
		t.Fatalf("want ErrConfigMissing, got %v", err)
	}
}

func TestCreateWithInitialInvitesIsBestEffort(t *testing.T) {
	s, store, owner, member := setup(t)
	store.addUser(3, "third@example.com", models.PlanPro)

	res, err := s.Create(context.Background(), owner, AccountData{Name: "Trip"},
		[]string{member.Email, "ghost@example.com", "third@example.com"})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if len(res.InviteResults) != 3 {
		t.Fatalf("invite results len=%d want=3", len(res.InviteResults))
	}
	if res.InviteResults[0].Err != "" || res.InviteResults[0].Invite == nil {
		t.Errorf("first invite should succeed: %+v", res.InviteResults[0])
	}
	if res.InviteResults[1].Err == "" {
		t.Error("invite to unknown user should fail")
	}
	// A failure in the middle does not stop later invites.
	if res.InviteResults[2].Err != "" || res.InviteResults[2].Invite == nil {
		t.Errorf("third invite should succeed: %+v", res.InviteResults[2])
	}
}

func TestInvitePreconditions(t *testing.T) {
	s, store, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	ctx := context.Background()

	t.Run("non-owner cannot invite", func(t *testing.T) {
		_, err := s.Invite(ctx, account.ID, member, "anyone@example.com")
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("want ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("self invite rejected", func(t *testing.T) {
		_, err := s.Invite(ctx, account.ID, owner, owner.Email)
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("want ErrInvalidOperation, got %v", err)
		}
	})

	t.Run("duplicate pending invite", func(t *testing.T) {
		mustInvite(t, s, account.ID, owner, member.Email)
		_, err := s.Invite(ctx, account.ID, owner, member.Email)
		if !errors.Is(err, ErrDuplicateInvite) {
			t.Fatalf("want ErrDuplicateInvite, got %v", err)
		}
	})

	t.Run("invitee quota exhausted", func(t *testing.T) {
		free := store.addUser(10, "freeloader@example.com", models.PlanFree)
		_, err := s.Invite(ctx, account.ID, owner, free.Email)
		if !errors.Is(err, ErrInviteeQuotaExceeded) {
			t.Fatalf("want ErrInviteeQuotaExceeded, got %v", err)
		}
	})

	t.Run("already a member", func(t *testing.T) {
		inv, _ := store.PendingInvite(ctx, account.ID, member.ID)
		if _, err := s.AcceptInvite(ctx, inv.ID, member); err != nil {
			t.Fatalf("AcceptInvite err=%v", err)
		}
		_, err := s.Invite(ctx, account.ID, owner, member.Email)
		if !errors.Is(err, ErrAlreadyMember) {
			t.Fatalf("want ErrAlreadyMember, got %v", err)
		}
	})
}

func TestInviteCapacityExceeded(t *testing.T) {
	s, store, owner, _ := setup(t)
	account := mustCreate(t, s, owner, "Big")
	ctx := context.Background()

	// Fill the account to the ultra cap of 10 (owner + 9).
	for i := 0; i < 9; i++ {
		u := store.addUser(uint(100+i), fmt.Sprintf("u%d@example.com", i), models.PlanPro)
		inv := mustInvite(t, s, account.ID, owner, u.Email)
		if _, err := s.AcceptInvite(ctx, inv.ID, u); err != nil {
			t.Fatalf("AcceptInvite(%d) err=%v", i, err)
		}
	}

	extra := store.addUser(200, "extra@example.com", models.PlanPro)
	_, err := s.Invite(ctx, account.ID, owner, extra.Email)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
	if _, err := store.PendingInvite(ctx, account.ID, extra.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("no invite record should exist after a capacity failure")
	}
}

func TestAcceptInviteAppendsMember(t *testing.T) {
	s, _, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)

	updated, err := s.AcceptInvite(context.Background(), inv.ID, member)
	if err != nil {
		t.Fatalf("AcceptInvite err=%v", err)
	}
	if len(updated.Members) != 2 {
		t.Fatalf("members len=%d want=2", len(updated.Members))
	}
	m := updated.Member(member.ID)
	if m == nil || m.Role != models.RoleMember {
		t.Fatalf("invitee not appended as member: %+v", updated.Members)
	}

	got, _ := s.ListInvites(context.Background(), member.ID)
	if len(got) != 1 || got[0].Status != models.InviteAccepted {
		t.Fatalf("invite status=%v want accepted", got)
	}
}

func TestAcceptInviteTerminalStates(t *testing.T) {
	s, store, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	ctx := context.Background()

	for _, terminal := range []string{models.InviteAccepted, models.InviteRejected} {
		inv := &models.SharedAccountInvite{
			SharedAccountID: account.ID,
			InviterUserID:   owner.ID,
			InvitedUserID:   member.ID,
			Status:          terminal,
		}
		if err := store.CreateInvite(ctx, inv); err != nil {
			t.Fatal(err)
		}

		before, _ := store.GetAccount(ctx, account.ID)
		_, err := s.AcceptInvite(ctx, inv.ID, member)
		if !errors.Is(err, ErrInviteNotPending) {
			t.Fatalf("status=%s: want ErrInviteNotPending, got %v", terminal, err)
		}
		after, _ := store.GetAccount(ctx, account.ID)
		if len(after.Members) != len(before.Members) {
			t.Fatalf("status=%s: member list mutated", terminal)
		}
		store.DeleteInvite(ctx, inv.ID)
	}
}

func TestAcceptInviteOnlyInvitee(t *testing.T) {
	s, store, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)

	other := store.addUser(5, "other@example.com", models.PlanPro)
	if _, err := s.AcceptInvite(context.Background(), inv.ID, other); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("want ErrPermissionDenied, got %v", err)
	}
}

func TestRejectInviteIsTerminal(t *testing.T) {
	s, _, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)
	ctx := context.Background()

	if err := s.RejectInvite(ctx, inv.ID, member); err != nil {
		t.Fatalf("RejectInvite err=%v", err)
	}
	if err := s.RejectInvite(ctx, inv.ID, member); !errors.Is(err, ErrInviteNotPending) {
		t.Fatalf("second reject: want ErrInviteNotPending, got %v", err)
	}
	if _, err := s.AcceptInvite(ctx, inv.ID, member); !errors.Is(err, ErrInviteNotPending) {
		t.Fatalf("accept after reject: want ErrInviteNotPending, got %v", err)
	}
}

func TestCancelInviteInviterOnlyAndPendingOnly(t *testing.T) {
	s, _, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	ctx := context.Background()

	inv := mustInvite(t, s, account.ID, owner, member.Email)
	if err := s.CancelInvite(ctx, inv.ID, member); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("invitee cancelling: want ErrPermissionDenied, got %v", err)
	}
	if err := s.CancelInvite(ctx, inv.ID, owner); err != nil {
		t.Fatalf("CancelInvite err=%v", err)
	}
	if _, err := s.ListInvites(ctx, member.ID); err != nil {
		t.Fatal(err)
	}

	inv2 := mustInvite(t, s, account.ID, owner, member.Email)
	if err := s.RejectInvite(ctx, inv2.ID, member); err != nil {
		t.Fatal(err)
	}
	if err := s.CancelInvite(ctx, inv2.ID, owner); !errors.Is(err, ErrInviteNotPending) {
		t.Fatalf("cancel after reject: want ErrInviteNotPending, got %v", err)
	}
}

func TestOwnerCannotLeave(t *testing.T) {
	s, store, owner, _ := setup(t)
	account := mustCreate(t, s, owner, "Household")

	err := s.Leave(context.Background(), account.ID, owner)
	if !errors.Is(err, ErrOwnerCannotLeave) {
		t.Fatalf("want ErrOwnerCannotLeave, got %v", err)
	}
	after, _ := store.GetAccount(context.Background(), account.ID)
	if len(after.Members) != 1 {
		t.Fatal("member list changed after failed leave")
	}
}

func TestMemberLeave(t *testing.T) {
	s, _, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)
	ctx := context.Background()
	if _, err := s.AcceptInvite(ctx, inv.ID, member); err != nil {
		t.Fatal(err)
	}

	if err := s.Leave(ctx, account.ID, member); err != nil {
		t.Fatalf("Leave err=%v", err)
	}
	got, err := s.Get(ctx, account.ID, member.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ex-member can still read the account: %+v %v", got, err)
	}
}

func TestRemoveMemberRules(t *testing.T) {
	s, _, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)
	ctx := context.Background()
	if _, err := s.AcceptInvite(ctx, inv.ID, member); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveMember(ctx, account.ID, owner.ID, member); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-owner removal: want ErrPermissionDenied, got %v", err)
	}
	if err := s.RemoveMember(ctx, account.ID, owner.ID, owner); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("removing owner: want ErrCannotRemoveOwner, got %v", err)
	}
	if err := s.RemoveMember(ctx, account.ID, member.ID, owner); err != nil {
		t.Fatalf("RemoveMember err=%v", err)
	}
	updated, _ := s.Get(ctx, account.ID, owner.ID)
	if len(updated.Members) != 1 {
		t.Fatalf("members len=%d want=1", len(updated.Members))
	}
}

func TestDeleteCascadesInvites(t *testing.T) {
	s, store, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	mustInvite(t, s, account.ID, owner, member.Email)
	ctx := context.Background()

	if err := s.Delete(ctx, account.ID, member); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-owner delete: want ErrPermissionDenied, got %v", err)
	}

	if err := s.Delete(ctx, account.ID, owner); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if _, err := store.GetAccount(ctx, account.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("account still exists after delete")
	}
	for _, inv := range store.invites {
		if inv.SharedAccountID == account.ID {
			t.Fatalf("invite %s survived the cascade", inv.ID)
		}
	}
}

func TestReorderIgnoresForeignIDs(t *testing.T) {
	s, store, owner, _ := setup(t)
	a := mustCreate(t, s, owner, "A")
	b := mustCreate(t, s, owner, "B")
	ctx := context.Background()

	other := store.addUser(9, "else@example.com", models.PlanUltra)
	foreign := mustCreate(t, s, other, "Foreign")

	if err := s.Reorder(ctx, owner, []string{b.ID, foreign.ID, a.ID}); err != nil {
		t.Fatalf("Reorder err=%v", err)
	}
	gotB, _ := store.GetAccount(ctx, b.ID)
	gotA, _ := store.GetAccount(ctx, a.ID)
	gotF, _ := store.GetAccount(ctx, foreign.ID)
	if gotB.Order != 0 || gotA.Order != 1 {
		t.Fatalf("order B=%d A=%d, want 0 and 1", gotB.Order, gotA.Order)
	}
	if gotF.Order != 0 {
		t.Fatalf("foreign account order changed to %d", gotF.Order)
	}
}

func TestStaleVersionConflicts(t *testing.T) {
	s, store, owner, member := setup(t)
	account := mustCreate(t, s, owner, "Household")
	inv := mustInvite(t, s, account.ID, owner, member.Email)
	ctx := context.Background()
	if _, err := s.AcceptInvite(ctx, inv.ID, member); err != nil {
		t.Fatal(err)
	}

	stale, _ := store.GetAccount(ctx, account.ID)
	// Another edit bumps the version.
	if err := store.ReplaceMembers(ctx, account.ID, stale.Version, stale.Members); err != nil {
		t.Fatal(err)
	}
	err := store.ReplaceMembers(ctx, account.ID, stale.Version, stale.Members)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}
