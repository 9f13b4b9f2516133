package escrow

import (
	"context"
	"errors"
	"log"
	"strings"

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

// View decorates a transaction with the caller's role in it.
type View struct {
	models.Transaction
	IsBuyer      bool   `json:"is_buyer"`
	IsSeller     bool   `json:"is_seller"`
	ListingTitle string `json:"listing_title"`
}

type Service interface {
	Create(ctx context.Context, buyerID, listingID uint) (*models.Transaction, error)
	Pay(ctx context.Context, id uuid.UUID, actorID uint, req payment.Request) (*models.Transaction, error)
	Ship(ctx context.Context, id uuid.UUID, actorID uint, trackingNumber string) (*models.Transaction, error)
	Confirm(ctx context.Context, id uuid.UUID, actorID uint) (*models.Transaction, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID uint) (*models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID, actorID uint) (*View, error)
	ListMine(ctx context.Context, userID uint) ([]View, error)
}

type service struct {
	store     repositories.Store
	payments  payment.Service
	publisher notification.Publisher
	balances  cache.BalanceCache
	market    config.Market
}

// NewService creates a new escrow service
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
	}
}

func (s *service) Create(ctx context.Context, buyerID, listingID uint) (*models.Transaction, error) {
	var created *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		listing, err := tx.LockListing(ctx, listingID)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrListingNotFound)
		}
		if listing.IsSold {
			return domainerrors.ErrAlreadySold
		}
		if listing.SellerID == buyerID {
			return domainerrors.ErrOwnListing
		}
		if _, err := tx.GetUserByID(ctx, buyerID); err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}

		switch active, err := tx.FindActiveEscrow(ctx, listingID, buyerID); {
		case err == nil:
			return alreadyActive(active)
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		fee := ledger.ServiceFee(listing.Price, s.market.ServiceFeeRate)
		sellerID := listing.SellerID
		record := &models.Transaction{
			BuyerID:     &buyerID,
			SellerID:    &sellerID,
			ListingID:   &listingID,
			Amount:      listing.Price,
			ServiceFee:  fee,
			TotalAmount: listing.Price.Add(fee),
			Type:        models.TransactionTypeEscrowPurchase,
			Status:      models.StatusPendingPayment,
			Description: listing.Title,
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			return err
		}
		created = record
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEscrow) {
		// Lost a race with a concurrent Create; report the winner once the
		// aborted transaction is gone.
		active, findErr := s.store.FindActiveEscrow(ctx, listingID, buyerID)
		if findErr != nil {
			return nil, domainerrors.ErrAlreadyActive
		}
		return nil, alreadyActive(active)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Pay(ctx context.Context, id uuid.UUID, actorID uint, req payment.Request) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		t, err := s.lockFor(ctx, tx, id, actorID, (*models.Transaction).IsBuyer)
		if err != nil {
			return err
		}
		if t.Status != models.StatusPendingPayment {
			return wrongStatus(t.Status)
		}
		if err := req.Validate(); err != nil {
			return err
		}
		if t.ListingID != nil {
			switch listing, err := tx.GetListingByID(ctx, *t.ListingID); {
			case errors.Is(err, repositories.ErrNotFound):
				// A deleted listing does not block paying for the agreed item.
			case err != nil:
				return err
			case listing.IsSold:
				return domainerrors.ErrAlreadySold
			}
		}

		switch req.Method {
		case models.PaymentMethodWallet:
			if _, err := ledger.Debit(ctx, tx, actorID, t.TotalAmount, s.market.Currency); err != nil {
				return err
			}
		default:
			buyer, err := tx.GetUserByID(ctx, actorID)
			if err != nil {
				return mapNotFound(err, domainerrors.ErrUserNotFound)
			}
			if _, err := s.payments.Charge(ctx, req, buyer.SavedCards, t.TotalAmount, t.Description); err != nil {
				return err
			}
		}

		change := models.StatusChange{To: models.StatusPaid, PaymentMethod: req.Method}
		if err := s.transition(ctx, tx, t, change); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.PaymentMethod == models.PaymentMethodWallet {
		s.invalidate(ctx, actorID)
	}
	event := s.event(notification.EventEscrowPaid, updated, updated.BuyerID, updated.SellerID)
	event.Amount = updated.TotalAmount
	notification.Emit(ctx, s.publisher, event)
	return updated, nil
}

func (s *service) Ship(ctx context.Context, id uuid.UUID, actorID uint, trackingNumber string) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		t, err := s.lockFor(ctx, tx, id, actorID, (*models.Transaction).IsSeller)
		if err != nil {
			return err
		}
		if t.Status != models.StatusPaid {
			return wrongStatus(t.Status)
		}
		change := models.StatusChange{To: models.StatusShipped, TrackingNumber: strings.TrimSpace(trackingNumber)}
		if err := s.transition(ctx, tx, t, change); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := s.event(notification.EventEscrowShipped, updated, updated.SellerID, updated.BuyerID)
	event.TrackingNumber = updated.TrackingNumber
	notification.Emit(ctx, s.publisher, event)
	return updated, nil
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID, actorID uint) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		t, err := s.lockFor(ctx, tx, id, actorID, (*models.Transaction).IsBuyer)
		if err != nil {
			return err
		}
		if t.Status != models.StatusShipped {
			return wrongStatus(t.Status)
		}
		if t.SellerID == nil {
			return domainerrors.ErrInternal.WithMessage("escrow %s has no seller", t.ID)
		}

		if err := s.transition(ctx, tx, t, models.StatusChange{To: models.StatusCompleted}); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, *t.SellerID, t.Amount); err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}
		if t.ListingID != nil {
			switch err := tx.MarkListingSold(ctx, *t.ListingID); {
			case err == nil:
			case errors.Is(err, repositories.ErrAlreadySold), errors.Is(err, repositories.ErrNotFound):
				// The item was delivered; the seller is paid even if the flag was already set.
				log.Printf("component=escrow msg=\"listing not flipped to sold\" escrow_id=%s listing_id=%d err=%v",
					t.ID, *t.ListingID, err)
			default:
				return err
			}
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, *updated.SellerID)
	event := s.event(notification.EventEscrowCompleted, updated, updated.BuyerID, updated.SellerID)
	event.Amount = updated.Amount
	notification.Emit(ctx, s.publisher, event)
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, actorID uint) (*models.Transaction, error) {
	var updated *models.Transaction
	var refunded bool
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		t, err := s.lockFor(ctx, tx, id, actorID, (*models.Transaction).IsBuyer)
		if err != nil {
			return err
		}
		if t.Status != models.StatusPendingPayment && t.Status != models.StatusPaid {
			return wrongStatus(t.Status)
		}

		paid := t.Status == models.StatusPaid
		if err := s.transition(ctx, tx, t, models.StatusChange{To: models.StatusCancelled}); err != nil {
			return err
		}
		if paid && t.PaymentMethod == models.PaymentMethodWallet {
			if _, err := tx.AdjustBalance(ctx, actorID, t.TotalAmount); err != nil {
				return mapNotFound(err, domainerrors.ErrUserNotFound)
			}
			refunded = true
		} else if paid {
			log.Printf("component=escrow msg=\"card refund is handled outside the wallet\" escrow_id=%s amount=%s",
				t.ID, t.TotalAmount.StringFixed(2))
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refunded {
		s.invalidate(ctx, actorID)
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, actorID uint) (*View, error) {
	t, err := s.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrTransactionNotFound)
	}
	if t.Type != models.TransactionTypeEscrowPurchase {
		return nil, domainerrors.ErrTransactionNotFound
	}
	if !t.IsBuyer(actorID) && !t.IsSeller(actorID) {
		return nil, domainerrors.ErrForbidden
	}
	v := newView(*t, actorID)
	return &v, nil
}

func (s *service) ListMine(ctx context.Context, userID uint) ([]View, error) {
	txs, err := s.store.ListTransactionsByUser(ctx, userID, repositories.TransactionFilter{
		Type: models.TransactionTypeEscrowPurchase,
	})
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(txs))
	for _, t := range txs {
		views = append(views, newView(t, userID))
	}
	return views, nil
}

func newView(t models.Transaction, userID uint) View {
	return View{
		Transaction:  t,
		IsBuyer:      t.IsBuyer(userID),
		IsSeller:     t.IsSeller(userID),
		ListingTitle: t.Description,
	}
}

// lockFor loads the escrow under a row lock and checks the actor's role.
// Checks run in order: existence, authorization, then the caller checks status.
func (s *service) lockFor(
	ctx context.Context,
	tx repositories.Store,
	id uuid.UUID,
	actorID uint,
	role func(*models.Transaction, uint) bool,
) (*models.Transaction, error) {
	t, err := tx.LockTransaction(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrTransactionNotFound)
	}
	if t.Type != models.TransactionTypeEscrowPurchase {
		return nil, domainerrors.ErrTransactionNotFound
	}
	if !role(t, actorID) {
		return nil, domainerrors.ErrForbidden
	}
	return t, nil
}

// transition applies change conditionally on t's current status and updates t.
func (s *service) transition(ctx context.Context, tx repositories.Store, t *models.Transaction, change models.StatusChange) error {
	err := tx.TransitionTransaction(ctx, t.ID, t.Status, change)
	if errors.Is(err, repositories.ErrStatusChanged) {
		current, getErr := tx.GetTransactionByID(ctx, t.ID)
		if getErr != nil {
			return getErr
		}
		return wrongStatus(current.Status)
	}
	if err != nil {
		return mapNotFound(err, domainerrors.ErrTransactionNotFound)
	}
	change.Apply(t)
	return nil
}

func (s *service) event(typ notification.EventType, t *models.Transaction, from, to *uint) notification.Event {
	var recipient uint
	if to != nil {
		recipient = *to
	}
	e := notification.NewEvent(typ, recipient)
	e.SenderID = from
	e.ListingID = t.ListingID
	id := t.ID
	e.TransactionID = &id
	e.Title = t.Description
	e.Currency = s.market.Currency
	return e
}

func (s *service) invalidate(ctx context.Context, userIDs ...uint) {
	if err := s.balances.Invalidate(ctx, userIDs...); err != nil {
		log.Printf("component=escrow msg=\"balance cache invalidation failed\" user_ids=%v err=%v", userIDs, err)
	}
}

func alreadyActive(existing *models.Transaction) error {
	return domainerrors.ErrAlreadyActive.
		WithStatus(string(existing.Status)).
		WithResource(existing.ID.String())
}

func wrongStatus(current models.TransactionStatus) error {
	return domainerrors.ErrWrongStatus.WithStatus(string(current))
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}
