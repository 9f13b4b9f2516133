package repositories

import (
	"context"
	"fmt"

	"pazar/internal/models"

	"github.com/google/uuid"
)

func (s *gormStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.conn(ctx).Create(tx).Error; err != nil {
		if name, ok := uniqueConstraint(err); ok && name == activeEscrowIndexName {
			return ErrDuplicateEscrow
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *gormStore) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.conn(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *gormStore) LockTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.forUpdate(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *gormStore) TransitionTransaction(ctx context.Context, id uuid.UUID, from models.TransactionStatus, change models.StatusChange) error {
	updates := map[string]interface{}{"status": change.To}
	if change.PaymentMethod != "" {
		updates["payment_method"] = change.PaymentMethod
	}
	if change.TrackingNumber != "" {
		updates["tracking_number"] = change.TrackingNumber
	}

	res := s.conn(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		ok, err := s.exists(ctx, &models.Transaction{}, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return ErrStatusChanged
	}
	return nil
}

func (s *gormStore) FindActiveEscrow(ctx context.Context, listingID, buyerID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.conn(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		Where("type = ? AND status IN ?", models.TransactionTypeEscrowPurchase, models.ActiveEscrowStatuses).
		Order("created_at DESC").
		First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *gormStore) ListTransactionsByUser(ctx context.Context, userID uint, filter TransactionFilter) ([]models.Transaction, error) {
	q := s.conn(ctx).Where("buyer_id = ? OR seller_id = ?", userID, userID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var txs []models.Transaction
	if err := q.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
