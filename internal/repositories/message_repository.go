package repositories

import (
	"context"
	"fmt"

	"pazar/internal/models"
)

func (s *gormStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.conn(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *gormStore) ListMessagesByReceiver(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	q := s.conn(ctx).Where("receiver_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []models.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
