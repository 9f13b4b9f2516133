package repositories

import (
	"context"
	"fmt"

	"pazar/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Create(user).Error; err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *gormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) LockUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.forUpdate(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

func (s *gormStore) AdjustBalance(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	var user models.User
	q := s.conn(ctx).Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "balance"}}}).
		Where("id = ?", userID)
	if delta.IsNegative() {
		q = q.Where("balance + ? >= 0", delta)
	}
	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		ok, err := s.exists(ctx, &models.User{}, userID)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, ErrInsufficientFunds
	}
	return user.Balance, nil
}

func (s *gormStore) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error {
	return s.updateUser(ctx, userID, "balance", balance)
}

func (s *gormStore) UpdateSavedCards(ctx context.Context, userID uint, cards models.SavedCards) error {
	return s.updateUser(ctx, userID, "saved_cards", cards)
}

func (s *gormStore) SetBanned(ctx context.Context, userID uint, banned bool) error {
	return s.updateUser(ctx, userID, "is_banned", banned)
}

func (s *gormStore) updateUser(ctx context.Context, userID uint, column string, value interface{}) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
