package repositories

import (
	"context"
	"fmt"
	"time"

	"pazar/internal/models"

	"github.com/google/uuid"
)

func (s *gormStore) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	return nil
}

func (s *gormStore) GetPromotionByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *gormStore) LockPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.forUpdate(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *gormStore) TransitionPromotion(ctx context.Context, id uuid.UUID, from, to models.PromotionStatus, transactionID *uuid.UUID) error {
	updates := map[string]interface{}{"status": to}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}
	res := s.conn(ctx).Model(&models.Promotion{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition promotion: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		ok, err := s.exists(ctx, &models.Promotion{}, id)
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

func (s *gormStore) ExpirePromotions(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Model(&models.Promotion{}).
		Where("status = ? AND expires_at < ?", models.PromotionPending, now).
		Update("status", models.PromotionExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire promotions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
