package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/repositories/cache"
	"pazar/internal/services/ledger"
	"pazar/internal/services/payment"
	"pazar/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	store    repositories.Store
	payments payment.Service
	balances cache.BalanceCache
	config   WalletConfig
	metrics  MetricsCollector
	now      func() time.Time
}

// NewService creates a new wallet service
func NewService(
	store repositories.Store,
	payments payment.Service,
	balances cache.BalanceCache,
	config WalletConfig,
	metrics MetricsCollector,
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

	if config.Currency == "" {
		config.Currency = DefaultCurrency
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:    store,
		payments: payments,
		balances: balances,
		config:   config,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrUserNotFound)
	}
	history, err := s.store.ListTransactionsByUser(ctx, userID, repositories.TransactionFilter{
		Limit: s.config.HistoryLimit,
	})
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.Transaction{}
	}
	cards := user.SavedCards
	if cards == nil {
		cards = models.SavedCards{}
	}

	return &models.Wallet{
		UserID:       userID,
		Balance:      user.Balance,
		Currency:     s.config.Currency,
		Transactions: history,
		SavedCards:   cards,
	}, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	if balance, ok := s.cachedBalance(ctx, userID); ok {
		return balance, nil
	}
	// Populate while holding the row lock. A concurrent mutation commits after
	// us, so its invalidation always lands after this write.
	var balance decimal.Decimal
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}
		balance = user.Balance
		s.storeBalance(ctx, userID, balance)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	start := s.now()
	v := validation.New()
	v.Amount("amount", amount)
	if err := v.Err(domainerrors.ErrInvalidAmount); err != nil {
		s.metrics.RecordError(OpDeposit, "invalid_amount")
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.CreateTransaction(ctx, &models.Transaction{
			BuyerID:     &userID,
			Amount:      amount,
			TotalAmount: amount,
			Type:        models.TransactionTypeDeposit,
			Status:      models.StatusCompleted,
			Description: depositDescription,
		}); err != nil {
			return err
		}
		var err error
		balance, err = tx.AdjustBalance(ctx, userID, amount)
		return mapNotFound(err, domainerrors.ErrUserNotFound)
	})
	s.finish(OpDeposit, start, err)
	if err != nil {
		return decimal.Zero, err
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordBalanceChange(userID, amount)
	return balance, nil
}

func (s *service) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, destination string) (decimal.Decimal, error) {
	start := s.now()
	destination = strings.TrimSpace(destination)
	v := validation.New()
	v.Withdrawal(amount, destination)
	if v.Has("amount") {
		s.metrics.RecordError(OpWithdraw, "invalid_amount")
		return decimal.Zero, v.Err(domainerrors.ErrInvalidAmount)
	}
	if err := v.Err(domainerrors.ErrInvalidDestination); err != nil {
		s.metrics.RecordError(OpWithdraw, "invalid_destination")
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		balance, err = ledger.Debit(ctx, tx, userID, amount, s.config.Currency)
		if err != nil {
			return err
		}
		return tx.CreateTransaction(ctx, &models.Transaction{
			BuyerID:     &userID,
			Amount:      amount,
			TotalAmount: amount,
			Type:        models.TransactionTypeWithdraw,
			Status:      models.StatusPending,
			Destination: destination,
			Description: withdrawPrefix + destination,
		})
	})
	s.finish(OpWithdraw, start, err)
	if err != nil {
		return decimal.Zero, err
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordBalanceChange(userID, amount.Neg())
	return balance, nil
}

func (s *service) SettleWithdrawal(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	start := s.now()
	var settled *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		w, err := lockWithdrawal(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := transitionWithdrawal(ctx, tx, w, models.StatusCompleted); err != nil {
			return err
		}
		settled = w
		return nil
	})
	s.finish(OpSettleWithdrawal, start, err)
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (s *service) CancelWithdrawal(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	start := s.now()
	var cancelled *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		w, err := lockWithdrawal(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := transitionWithdrawal(ctx, tx, w, models.StatusCancelled); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, *w.BuyerID, w.Amount); err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}
		cancelled = w
		return nil
	})
	s.finish(OpCancelWithdrawal, start, err)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, *cancelled.BuyerID)
	s.metrics.RecordBalanceChange(*cancelled.BuyerID, cancelled.Amount)
	return cancelled, nil
}

func (s *service) ListCards(ctx context.Context, userID uint) (models.SavedCards, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrUserNotFound)
	}
	if user.SavedCards == nil {
		return models.SavedCards{}, nil
	}
	return user.SavedCards, nil
}

func (s *service) AddCard(ctx context.Context, userID uint, input payment.CardInput) (models.SavedCards, error) {
	start := s.now()
	input = input.Normalized()
	tok, err := s.payments.Tokenize(ctx, input)
	if err != nil {
		s.finish(OpAddCard, start, err)
		return nil, err
	}

	card := models.SavedCard{
		ID:          uuid.NewString(),
		Token:       tok.Token,
		Brand:       tok.Brand,
		LastFour:    tok.LastFour,
		Masked:      payment.Mask(tok.LastFour),
		HolderName:  input.HolderName,
		ExpiryMonth: input.ExpiryMonth,
		ExpiryYear:  input.ExpiryYear,
		AddedAt:     s.now(),
	}

	var cards models.SavedCards
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}
		cards = append(append(models.SavedCards{}, user.SavedCards...), card)
		return tx.UpdateSavedCards(ctx, userID, cards)
	})
	s.finish(OpAddCard, start, err)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *service) RemoveCard(ctx context.Context, userID uint, cardID string) (models.SavedCards, error) {
	start := s.now()
	var cards models.SavedCards
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return mapNotFound(err, domainerrors.ErrUserNotFound)
		}
		remaining, removed := user.SavedCards.Without(cardID)
		if !removed {
			return domainerrors.ErrCardNotFound
		}
		cards = remaining
		return tx.UpdateSavedCards(ctx, userID, cards)
	})
	s.finish(OpRemoveCard, start, err)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *service) finish(operation string, start time.Time, err error) {
	s.metrics.RecordOperationDuration(operation, s.now().Sub(start))
	if err != nil {
		s.metrics.RecordOperationResult(operation, "failure")
		var de *domainerrors.DomainError
		if errors.As(err, &de) {
			s.metrics.RecordError(operation, de.Code)
		} else {
			s.metrics.RecordError(operation, "internal")
		}
		return
	}
	s.metrics.RecordOperationResult(operation, "success")
}

func lockWithdrawal(ctx context.Context, tx repositories.Store, id uuid.UUID) (*models.Transaction, error) {
	w, err := tx.LockTransaction(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domainerrors.ErrWithdrawalNotFound)
	}
	if w.Type != models.TransactionTypeWithdraw || w.BuyerID == nil {
		return nil, domainerrors.ErrWithdrawalNotFound
	}
	if w.Status != models.StatusPending {
		return nil, domainerrors.ErrWithdrawalNotPending.WithStatus(string(w.Status))
	}
	return w, nil
}

func transitionWithdrawal(ctx context.Context, tx repositories.Store, w *models.Transaction, to models.TransactionStatus) error {
	change := models.StatusChange{To: to}
	err := tx.TransitionTransaction(ctx, w.ID, models.StatusPending, change)
	if errors.Is(err, repositories.ErrStatusChanged) {
		current, getErr := tx.GetTransactionByID(ctx, w.ID)
		if getErr != nil {
			return domainerrors.ErrWithdrawalNotPending
		}
		return domainerrors.ErrWithdrawalNotPending.WithStatus(string(current.Status))
	}
	if err != nil {
		return mapNotFound(err, domainerrors.ErrWithdrawalNotFound)
	}
	change.Apply(w)
	return nil
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}
