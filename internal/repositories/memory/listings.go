package memory

import (
	"context"
	"time"

	"pazar/internal/models"
	"pazar/internal/repositories"
)

func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) error {
	defer s.lock()()
	s.st.nextListID++
	now := s.now()
	listing.ID = s.st.nextListID
	listing.CreatedAt, listing.UpdatedAt = now, now
	if listing.Status == "" {
		listing.Status = models.ListingStatusPending
	}
	s.st.listings[listing.ID] = *listing
	return nil
}

func (s *Store) GetListingByID(ctx context.Context, id uint) (*models.Listing, error) {
	defer s.lock()()
	l, ok := s.st.listings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &l, nil
}

func (s *Store) LockListing(ctx context.Context, id uint) (*models.Listing, error) {
	return s.GetListingByID(ctx, id)
}

func (s *Store) UpdateListing(ctx context.Context, listing *models.Listing) error {
	defer s.lock()()
	l, ok := s.st.listings[listing.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if l.IsSold {
		return repositories.ErrAlreadySold
	}
	l.Title = listing.Title
	l.Description = listing.Description
	l.Price = listing.Price
	l.Category = listing.Category
	l.SubCategory = listing.SubCategory
	l.City = listing.City
	l.District = listing.District
	l.Status = listing.Status
	l.UpdatedAt = s.now()
	s.st.listings[l.ID] = l
	return nil
}

func (s *Store) SetListingStatus(ctx context.Context, id uint, status string) error {
	defer s.lock()()
	l, ok := s.st.listings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = s.now()
	s.st.listings[id] = l
	return nil
}

func (s *Store) MarkListingSold(ctx context.Context, id uint) error {
	defer s.lock()()
	l, ok := s.st.listings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if l.IsSold {
		return repositories.ErrAlreadySold
	}
	l.IsSold = true
	l.UpdatedAt = s.now()
	s.st.listings[id] = l
	return nil
}

func (s *Store) SetListingFeatured(ctx context.Context, id uint, until time.Time) error {
	defer s.lock()()
	l, ok := s.st.listings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	now := s.now()
	if l.IsFeatured && l.FeaturedUntil != nil && !l.FeaturedUntil.Before(now) {
		return repositories.ErrAlreadyFeatured
	}
	l.IsFeatured = true
	l.FeaturedUntil = &until
	l.UpdatedAt = now
	s.st.listings[id] = l
	return nil
}

func (s *Store) ClearExpiredFeatures(ctx context.Context, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for id, l := range s.st.listings {
		if l.IsFeatured && l.FeaturedUntil != nil && l.FeaturedUntil.Before(now) {
			l.IsFeatured = false
			s.st.listings[id] = l
			n++
		}
	}
	return n, nil
}
