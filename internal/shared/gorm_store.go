package shared

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/federicodonati07/fintrack-sub001/internal/models"
)

// Ensure GormStore implements Store.
var _ Store = (*GormStore)(nil)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) CreateAccount(ctx context.Context, account *models.SharedAccount) error {
	return g.db.WithContext(ctx).Create(account).Error
}

func (g *GormStore) GetAccount(ctx context.Context, id string) (*models.SharedAccount, error) {
	var account models.SharedAccount
	err := g.db.WithContext(ctx).Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (g *GormStore) ListAccountsForUser(ctx context.Context, userID uint) ([]models.SharedAccount, error) {
	var accounts []models.SharedAccount
	err := g.db.WithContext(ctx).
		Joins("JOIN shared_account_members m ON m.shared_account_id = shared_accounts.id").
		Where("m.user_id = ?", userID).
		Preload("Members").
		Order(`shared_accounts."order" asc`).
		Find(&accounts).Error
	return accounts, err
}

func (g *GormStore) CountAccountsForUser(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.SharedAccountMember{}).
		Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

func (g *GormStore) ReplaceMembers(ctx context.Context, accountID string, version int64, members []models.SharedAccountMember) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SharedAccount{}).
			Where("id = ? AND version = ?", accountID, version).
			Update("version", version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.SharedAccount{}).Where("id = ?", accountID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}
		if err := tx.Where("shared_account_id = ?", accountID).Delete(&models.SharedAccountMember{}).Error; err != nil {
			return err
		}
		for i := range members {
			members[i].ID = 0
			members[i].SharedAccountID = accountID
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

func (g *GormStore) SetAccountOrder(ctx context.Context, accountID string, order int) error {
	return g.db.WithContext(ctx).Model(&models.SharedAccount{}).
		Where("id = ?", accountID).Update("order", order).Error
}

func (g *GormStore) DeleteAccountCascade(ctx context.Context, accountID string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shared_account_id = ?", accountID).Delete(&models.SharedAccountInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shared_account_id = ?", accountID).Delete(&models.SharedAccountMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.SharedAccount{}, "id = ?", accountID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (g *GormStore) CreateInvite(ctx context.Context, invite *models.SharedAccountInvite) error {
	return g.db.WithContext(ctx).Create(invite).Error
}

func (g *GormStore) GetInvite(ctx context.Context, id string) (*models.SharedAccountInvite, error) {
	var invite models.SharedAccountInvite
	err := g.db.WithContext(ctx).First(&invite, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (g *GormStore) PendingInvite(ctx context.Context, accountID string, invitedUserID uint) (*models.SharedAccountInvite, error) {
	var invite models.SharedAccountInvite
	err := g.db.WithContext(ctx).
		Where("shared_account_id = ? AND invited_user_id = ? AND status = ?", accountID, invitedUserID, models.InvitePending).
		First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (g *GormStore) ListInvitesForUser(ctx context.Context, userID uint) ([]models.SharedAccountInvite, error) {
	var invites []models.SharedAccountInvite
	err := g.db.WithContext(ctx).
		Where("invited_user_id = ?", userID).
		Order("created_at desc").
		Find(&invites).Error
	return invites, err
}

func (g *GormStore) TransitionInvite(ctx context.Context, id, from, to string) error {
	res := g.db.WithContext(ctx).Model(&models.SharedAccountInvite{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteNotPending
	}
	return nil
}

func (g *GormStore) DeleteInvite(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Delete(&models.SharedAccountInvite{}, "id = ?", id).Error
}

func (g *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := g.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *GormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := g.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *GormStore) PlanLimits(ctx context.Context) ([]models.PlanLimits, error) {
	var rows []models.PlanLimits
	err := g.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}
