package repositories

import (
	"context"
	"fmt"
	"time"

	"pazar/internal/models"
)

func (s *gormStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	if err := s.conn(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (s *gormStore) GetListingByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.conn(ctx).First(&listing, id).Error; err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (s *gormStore) LockListing(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.forUpdate(ctx).First(&listing, id).Error; err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (s *gormStore) UpdateListing(ctx context.Context, listing *models.Listing) error {
	res := s.conn(ctx).Model(&models.Listing{}).
		Where("id = ? AND is_sold = ?", listing.ID, false).
		Updates(map[string]interface{}{
			"title":        listing.Title,
			"description":  listing.Description,
			"price":        listing.Price,
			"category":     listing.Category,
			"sub_category": listing.SubCategory,
			"city":         listing.City,
			"district":     listing.District,
			"status":       listing.Status,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.listingMiss(ctx, listing.ID, ErrAlreadySold)
	}
	return nil
}

func (s *gormStore) SetListingStatus(ctx context.Context, id uint, status string) error {
	res := s.conn(ctx).Model(&models.Listing{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set listing status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) MarkListingSold(ctx context.Context, id uint) error {
	res := s.conn(ctx).Model(&models.Listing{}).
		Where("id = ? AND is_sold = ?", id, false).
		Update("is_sold", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark listing sold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.listingMiss(ctx, id, ErrAlreadySold)
	}
	return nil
}

func (s *gormStore) SetListingFeatured(ctx context.Context, id uint, until time.Time) error {
	res := s.conn(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Where("is_featured = ? OR featured_until IS NULL OR featured_until < ?", false, time.Now()).
		Updates(map[string]interface{}{"is_featured": true, "featured_until": until})
	if res.Error != nil {
		return fmt.Errorf("failed to feature listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.listingMiss(ctx, id, ErrAlreadyFeatured)
	}
	return nil
}

func (s *gormStore) ClearExpiredFeatures(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Model(&models.Listing{}).
		Where("is_featured = ? AND featured_until < ?", true, now).
		Updates(map[string]interface{}{"is_featured": false})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear expired features: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) listingMiss(ctx context.Context, id uint, conflict error) error {
	ok, err := s.exists(ctx, &models.Listing{}, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return conflict
}
