package promotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pazar/internal/config"
	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/repositories/cache"
	"pazar/internal/services/ledger"
	"pazar/internal/services/notification"
	"pazar/internal/services/payment"

	"github.com/google/uuid"
)

// Sweep reports what one expiry run changed.
type Sweep struct {
	ExpiredPromotions int64 `json:"expired_promotions"`
	ClearedFeatures   int64 `json:"cleared_features"`
}

type Service interface {
	// Prices lists the purchasable featured durations.
	Prices() []config.FeaturedPrice
	// Request opens a pending promotion payment for the owner's listing.
	Request(ctx context.Context, listingID, userID uint, days int) (*models.Promotion, error)
	// Complete pays a pending promotion and features the listing.
	Complete(ctx context.Context, id uuid.UUID, userID uint, req payment.Request) (*models.Promotion, error)
	// ExpireStale expires unpaid promotions and un-features listings whose period ended.
	ExpireStale(ctx context.Context) (Sweep, error)
}

type service struct {
	store     repositories.Store
	payments  payment.Service
	publisher notification.Publisher
	balances  cache.BalanceCache
	market    config.Market
	now       func() time.Time
}

// NewService creates a new promotion service
func NewService(
	store repositories.Store,
	payments payment.Service,
	publisher notification.Publisher,
	balances cache.BalanceCache,
	market config.Market,
) Service {
	if store == nil {
		panic("store is required")
	}
	if payments == nil {
		panic("payment service is required")
	}
	if balances == nil {
		balances = cache.NoopBalanceCache{}
	}
	return &service{
		store:     store,
		payments:  payments,
		publisher: publisher,
		balances:  balances,
		market:    market,
		now:       time.Now,
	}
}

func (s *service) Prices() []config.FeaturedPrice {
	return s.market.PriceList()
}

func (s *service) Request(ctx context.Context, listingID, userID uint, days int) (*models.Promotion, error) {
	price, ok := s.market.FeaturedPrices[days]
	if !ok {
		return nil, domainerrors.ErrInvalidDuration.WithMessage("unsupported featured duration: %d days", days)
	}

	listing, err := s.store.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrListingNotFound)
	}
	if listing.SellerID != userID {
		return nil, domainerrors.ErrForbidden
	}
	now := s.now()
	if isFeatured(listing, now) {
		return nil, domainerrors.ErrAlreadyFeatured
	}

	p := &models.Promotion{
		ListingID: listingID,
		UserID:    userID,
		Days:      days,
		Price:     price,
		Status:    models.PromotionPending,
		ExpiresAt: now.Add(s.market.PromotionTTL),
	}
	if err := s.store.CreatePromotion(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID, userID uint, req payment.Request) (*models.Promotion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		completed *models.Promotion
		listing   *models.Listing
	)
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		p, err := tx.LockPromotion(ctx, id)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrPromotionNotFound)
		}
		if p.UserID != userID {
			return domainerrors.ErrForbidden
		}
		now := s.now()
		switch {
		case p.Status == models.PromotionExpired:
			return domainerrors.ErrPromotionExpired
		case p.Status != models.PromotionPending:
			return domainerrors.ErrWrongStatus.WithStatus(string(p.Status))
		case now.After(p.ExpiresAt):
			return domainerrors.ErrPromotionExpired
		}

		listing, err = tx.LockListing(ctx, p.ListingID)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		if isFeatured(listing, now) {
			return domainerrors.ErrAlreadyFeatured
		}

		description := fmt.Sprintf("Featured listing (%d days): %s", p.Days, listing.Title)
		if err := s.collect(ctx, tx, userID, req, p, description); err != nil {
			return err
		}

		record := &models.Transaction{
			BuyerID:       &userID,
			ListingID:     &p.ListingID,
			Amount:        p.Price,
			TotalAmount:   p.Price,
			Type:          models.TransactionTypePromotion,
			Status:        models.StatusCompleted,
			PaymentMethod: req.Method,
			Description:   description,
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			return err
		}
		if err := tx.TransitionPromotion(ctx, p.ID, models.PromotionPending, models.PromotionCompleted, &record.ID); err != nil {
			if errors.Is(err, repositories.ErrStatusChanged) {
				return domainerrors.ErrPromotionExpired
			}
			return err
		}

		until := now.AddDate(0, 0, p.Days)
		if err := tx.SetListingFeatured(ctx, p.ListingID, until); err != nil {
			if errors.Is(err, repositories.ErrAlreadyFeatured) {
				return domainerrors.ErrAlreadyFeatured
			}
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}

		p.Status = models.PromotionCompleted
		p.TransactionID = &record.ID
		completed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Method == models.PaymentMethodWallet {
		if err := s.balances.Invalidate(ctx, userID); err != nil {
			log.Printf("component=promotion msg=\"balance cache invalidation failed\" user_id=%d err=%v", userID, err)
		}
	}

	event := notification.NewEvent(notification.EventListingFeatured, userID)
	listingID := completed.ListingID
	event.ListingID = &listingID
	event.TransactionID = completed.TransactionID
	event.Title = listing.Title
	event.Amount = completed.Price
	event.Currency = s.market.Currency
	event.Days = completed.Days
	notification.Emit(ctx, s.publisher, event)
	return completed, nil
}

// collect takes the promotion price from the wallet or the card.
func (s *service) collect(ctx context.Context, tx repositories.Store, userID uint, req payment.Request, p *models.Promotion, description string) error {
	if req.Method == models.PaymentMethodWallet {
		_, err := ledger.Debit(ctx, tx, userID, p.Price, s.market.Currency)
		return err
	}

	user, err := tx.GetUserByID(ctx, userID)
	if err != nil {
		return mapNotFound(err, domainerrors.ErrUserNotFound)
	}
	_, err = s.payments.Charge(ctx, req, user.SavedCards, p.Price, description)
	return err
}

func (s *service) ExpireStale(ctx context.Context) (Sweep, error) {
	now := s.now()
	var sweep Sweep
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if sweep.ExpiredPromotions, err = tx.ExpirePromotions(ctx, now); err != nil {
			return fmt.Errorf("expire promotions: %w", err)
		}
		if sweep.ClearedFeatures, err = tx.ClearExpiredFeatures(ctx, now); err != nil {
			return fmt.Errorf("clear features: %w", err)
		}
		return nil
	})
	if err != nil {
		return Sweep{}, err
	}
	if sweep.ExpiredPromotions > 0 || sweep.ClearedFeatures > 0 {
		log.Printf("component=promotion msg=\"expiry sweep\" expired_promotions=%d cleared_features=%d",
			sweep.ExpiredPromotions, sweep.ClearedFeatures)
	}
	return sweep, nil
}

func isFeatured(l *models.Listing, now time.Time) bool {
	return l.IsFeatured && l.FeaturedUntil != nil && !l.FeaturedUntil.Before(now)
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}
