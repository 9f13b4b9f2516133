package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pazar/internal/config"
	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/services/notification"
	"pazar/internal/validation"

	"github.com/shopspring/decimal"
)

// Input carries the editable fields of a listing.
type Input struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
	City        string          `json:"city"`
	District    string          `json:"district"`
}

type Service interface {
	Create(ctx context.Context, sellerID uint, input Input) (*models.Listing, error)
	Get(ctx context.Context, id uint) (*models.Listing, error)
	Update(ctx context.Context, id, actorID uint, input Input) (*models.Listing, error)
	Approve(ctx context.Context, id uint) (*models.Listing, error)
	Reject(ctx context.Context, id uint, reason string) (*models.Listing, error)
	SetUserBanned(ctx context.Context, userID uint, banned bool) error
}

type service struct {
	store     repositories.Store
	publisher notification.Publisher
	market    config.Market
}

// NewService creates a new listing service
func NewService(store repositories.Store, publisher notification.Publisher, market config.Market) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, publisher: publisher, market: market}
}

func (s *service) Create(ctx context.Context, sellerID uint, input Input) (*models.Listing, error) {
	input, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserByID(ctx, sellerID); err != nil {
		return nil, mapNotFound(err, domainerrors.ErrUserNotFound)
	}

	l := &models.Listing{
		SellerID: sellerID,
		Status:   models.ListingStatusPending,
	}
	input.applyTo(l)
	if err := s.store.CreateListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Listing, error) {
	l, err := s.store.GetListingByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrListingNotFound)
	}
	return l, nil
}

func (s *service) Update(ctx context.Context, id, actorID uint, input Input) (*models.Listing, error) {
	input, err := s.normalize(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Listing
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		l, err := tx.LockListing(ctx, id)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		if l.SellerID != actorID {
			return domainerrors.ErrForbidden
		}
		if l.IsSold {
			return domainerrors.ErrListingNotEditable
		}

		// Content changes on an approved listing send it back to review.
		if l.Status == models.ListingStatusApproved && input.changesContent(l) {
			l.Status = models.ListingStatusPending
		}
		input.applyTo(l)
		if err := tx.UpdateListing(ctx, l); err != nil {
			if errors.Is(err, repositories.ErrAlreadySold) {
				return domainerrors.ErrListingNotEditable
			}
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Approve(ctx context.Context, id uint) (*models.Listing, error) {
	l, err := s.review(ctx, id, models.ListingStatusApproved)
	if err != nil {
		return nil, err
	}
	notification.Emit(ctx, s.publisher, s.event(notification.EventListingApproved, l))
	return l, nil
}

func (s *service) Reject(ctx context.Context, id uint, reason string) (*models.Listing, error) {
	l, err := s.review(ctx, id, models.ListingStatusRejected)
	if err != nil {
		return nil, err
	}
	event := s.event(notification.EventListingRejected, l)
	event.Reason = strings.TrimSpace(reason)
	notification.Emit(ctx, s.publisher, event)
	return l, nil
}

func (s *service) SetUserBanned(ctx context.Context, userID uint, banned bool) error {
	return mapNotFound(s.store.SetBanned(ctx, userID, banned), domainerrors.ErrUserNotFound)
}

func (s *service) review(ctx context.Context, id uint, status string) (*models.Listing, error) {
	var reviewed *models.Listing
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		l, err := tx.LockListing(ctx, id)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		if err := tx.SetListingStatus(ctx, id, status); err != nil {
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		l.Status = status
		reviewed = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func (s *service) event(typ notification.EventType, l *models.Listing) notification.Event {
	e := notification.NewEvent(typ, l.SellerID)
	id := l.ID
	e.ListingID = &id
	e.Title = l.Title
	return e
}

func (s *service) normalize(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.City = strings.TrimSpace(in.City)
	in.District = strings.TrimSpace(in.District)
	in.SubCategory = strings.TrimSpace(in.SubCategory)

	v := validation.New()
	v.Listing(in.Title, in.Description, in.Price)
	category, ok := s.market.FindCategory(strings.TrimSpace(in.Category))
	v.Check(ok, "category", fmt.Sprintf("unknown category %q", in.Category))
	if ok {
		in.Category = category.Name
		v.Check(in.SubCategory == "" || len(category.SubCategories) == 0 || contains(category.SubCategories, in.SubCategory),
			"sub_category", fmt.Sprintf("unknown sub-category %q for %s", in.SubCategory, category.Name))
	}
	v.Check(in.City == "" || s.market.HasCity(in.City), "city", fmt.Sprintf("unknown city %q", in.City))
	return in, v.Err(domainerrors.ErrInvalidListing)
}

func (in Input) changesContent(l *models.Listing) bool {
	return in.Title != l.Title || in.Description != l.Description || !in.Price.Equal(l.Price)
}

func (in Input) applyTo(l *models.Listing) {
	l.Title = in.Title
	l.Description = in.Description
	l.Price = in.Price
	l.Category = in.Category
	l.SubCategory = in.SubCategory
	l.City = in.City
	l.District = in.District
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}
