package escrow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pazar/internal/config"
	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/repositories/memory"
	"pazar/internal/services/ledger"
	"pazar/internal/services/notification"
	"pazar/internal/services/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e notification.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordingPublisher) last() notification.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e notification.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	pub    *recordingPublisher
	svc    Service
	ledger ledger.Service
	buyer  *models.User
	seller *models.User
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: memory.NewStore(),
		pub:   &recordingPublisher{},
	}
	f.svc = NewService(f.store, payment.NewService(nil, nil, "TRY"), f.pub, nil, config.DefaultMarket())
	f.ledger = ledger.NewService(f.store, nil)
	f.buyer = f.user(t, "buyer@example.com")
	f.seller = f.user(t, "seller@example.com")
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email}
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) listing(t *testing.T, price string) *models.Listing {
	t.Helper()
	l := &models.Listing{Title: "Item " + price, Price: dec(price), SellerID: f.seller.ID, Status: models.ListingStatusApproved}
	require.NoError(t, f.store.CreateListing(f.ctx, l))
	return l
}

// fund records a completed deposit and credits the balance, as a real top-up does.
func (f *fixture) fund(t *testing.T, userID uint, amount string) {
	t.Helper()
	err := f.store.ExecuteInTransaction(f.ctx, func(tx repositories.Store) error {
		uid := userID
		if err := tx.CreateTransaction(f.ctx, &models.Transaction{
			BuyerID: &uid, Amount: dec(amount), TotalAmount: dec(amount),
			Type: models.TransactionTypeDeposit, Status: models.StatusCompleted,
		}); err != nil {
			return err
		}
		_, err := tx.AdjustBalance(f.ctx, userID, dec(amount))
		return err
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID uint) string {
	t.Helper()
	u, err := f.store.GetUserByID(f.ctx, userID)
	require.NoError(t, err)
	return u.Balance.String()
}

func (f *fixture) assertLedgerConsistent(t *testing.T, userIDs ...uint) {
	t.Helper()
	for _, id := range userIDs {
		check, err := f.ledger.Recompute(f.ctx, id, false)
		require.NoError(t, err)
		assert.True(t, check.Matched, "user %d: computed %s cached %s", id, check.Computed, check.Cached)
	}
}

func wallet() payment.Request { return payment.Request{Method: models.PaymentMethodWallet} }

func card() payment.Request {
	return payment.Request{Method: models.PaymentMethodCard, Card: &payment.CardInput{
		Number: "4242424242424242", ExpiryMonth: "12", ExpiryYear: "2099", CVV: "123",
	}}
}

func assertWrongStatus(t *testing.T, err error, current models.TransactionStatus) {
	t.Helper()
	require.ErrorIs(t, err, domainerrors.ErrWrongStatus)
	var de *domainerrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, string(current), de.CurrentStatus)
}

func TestCreate_FeeArithmetic(t *testing.T) {
	tests := []struct {
		price, fee, total string
	}{
		{"1000", "30", "1030"},
		{"1001", "30", "1031"},
		{"500", "15", "515"},
		{"50", "2", "52"},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			f := newFixture(t)
			l := f.listing(t, tt.price)

			tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.price, tx.Amount.String())
			assert.Equal(t, tt.fee, tx.ServiceFee.String())
			assert.Equal(t, tt.total, tx.TotalAmount.String())
			assert.Equal(t, models.StatusPendingPayment, tx.Status)
			assert.Equal(t, l.Title, tx.Description)
			assert.Zero(t, f.pub.count(), "create does not notify")
		})
	}
}

func TestCreate_Guards(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, "100")

	_, err := f.svc.Create(f.ctx, f.buyer.ID, 999)
	assert.ErrorIs(t, err, domainerrors.ErrListingNotFound)

	_, err = f.svc.Create(f.ctx, f.seller.ID, l.ID)
	assert.ErrorIs(t, err, domainerrors.ErrOwnListing)

	require.NoError(t, f.store.MarkListingSold(f.ctx, l.ID))
	_, err = f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadySold)
}

func TestCreate_SingleActiveEscrowPerBuyer(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1000")
	l := f.listing(t, "100")

	first, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	var de *domainerrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyActive)
	assert.Equal(t, string(models.StatusPendingPayment), de.CurrentStatus)
	assert.Equal(t, first.ID.String(), de.ResourceID)

	_, err = f.svc.Pay(f.ctx, first.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyActive)
	assert.Equal(t, string(models.StatusPaid), de.CurrentStatus)

	// A different buyer may still open their own escrow.
	other := f.user(t, "other@example.com")
	_, err = f.svc.Create(f.ctx, other.ID, l.ID)
	assert.NoError(t, err)

	// Once cancelled the buyer can start over.
	_, err = f.svc.Cancel(f.ctx, first.ID, f.buyer.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	assert.NoError(t, err)
}

func TestEndToEnd_WalletPurchase(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "2000")
	l := f.listing(t, "1000")

	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", tx.ServiceFee.String())
	assert.Equal(t, "1030", tx.TotalAmount.String())

	tx, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, tx.Status)
	assert.Equal(t, models.PaymentMethodWallet, tx.PaymentMethod)
	assert.Equal(t, "970", f.balance(t, f.buyer.ID))
	assert.Equal(t, "0", f.balance(t, f.seller.ID))
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)

	paid := f.pub.last()
	assert.Equal(t, notification.EventEscrowPaid, paid.Type)
	assert.Equal(t, f.seller.ID, paid.RecipientID)
	assert.Equal(t, f.buyer.ID, *paid.SenderID)

	tx, err = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, " TRK-42 ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, tx.Status)
	assert.Equal(t, "TRK-42", tx.TrackingNumber)
	assert.Equal(t, f.buyer.ID, f.pub.last().RecipientID)
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)

	tx, err = f.svc.Confirm(f.ctx, tx.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, "1000", f.balance(t, f.seller.ID))
	assert.Equal(t, "970", f.balance(t, f.buyer.ID))
	assert.Equal(t, notification.EventEscrowCompleted, f.pub.last().Type)
	assert.Equal(t, f.seller.ID, f.pub.last().RecipientID)
	assert.Equal(t, 3, f.pub.count())

	listing, err := f.store.GetListingByID(f.ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, listing.IsSold)
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)

	stored, err := f.store.GetTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", stored.Amount.String(), "amount fixed at creation")
}

func TestEndToEnd_CardPurchaseLeavesBuyerWalletAlone(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "50")
	l := f.listing(t, "1000")

	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)
	tx, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, card())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCard, tx.PaymentMethod)
	assert.Equal(t, "50", f.balance(t, f.buyer.ID))

	_, err = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, "TRK")
	require.NoError(t, err)
	_, err = f.svc.Confirm(f.ctx, tx.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", f.balance(t, f.seller.ID))
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)
}

func TestPay_SavedCard(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, "200")
	require.NoError(t, f.store.UpdateSavedCards(f.ctx, f.buyer.ID, models.SavedCards{
		{ID: "c1", Token: "tok_visa", Brand: "Visa", LastFour: "4242"},
		{ID: "c2", Token: "tok_chargeDeclined", Brand: "Visa", LastFour: "0002"},
	}))

	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, payment.Request{Method: models.PaymentMethodSavedCard, SavedCardID: "missing"})
	assert.ErrorIs(t, err, domainerrors.ErrCardNotFound)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, payment.Request{Method: models.PaymentMethodSavedCard, SavedCardID: "c2"})
	assert.ErrorIs(t, err, domainerrors.ErrPaymentDeclined)

	tx, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, payment.Request{Method: models.PaymentMethodSavedCard, SavedCardID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodSavedCard, tx.PaymentMethod)
	assert.Equal(t, "0", f.balance(t, f.buyer.ID))
}

func TestPay_Validation(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, payment.Request{Method: "bitcoin"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPaymentMethod)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, payment.Request{Method: models.PaymentMethodCard})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCard)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.seller.ID, wallet())
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.svc.Pay(f.ctx, uuid.New(), f.buyer.ID, wallet())
	assert.ErrorIs(t, err, domainerrors.ErrTransactionNotFound)

	stored, err := f.store.GetTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, stored.Status)
	assert.Zero(t, f.pub.count())
}

func TestPay_InsufficientBalanceReportsCurrentBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "50")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	var de *domainerrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
	assert.Equal(t, "50.00", de.CurrentBalance)
	assert.Contains(t, de.Message, "103.00 TRY")
	assert.Equal(t, "50", f.balance(t, f.buyer.ID))
}

// listingLookupFailure makes every listing read fail, inside transactions too.
type listingLookupFailure struct {
	repositories.Store
	err error
}

func (s listingLookupFailure) GetListingByID(context.Context, uint) (*models.Listing, error) {
	return nil, s.err
}

func (s listingLookupFailure) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	return s.Store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		return fn(listingLookupFailure{Store: tx, err: s.err})
	})
}

func TestPay_ListingLookupFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "500")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	dbDown := errors.New("connection reset")
	svc := NewService(listingLookupFailure{Store: f.store, err: dbDown},
		payment.NewService(nil, nil, "TRY"), f.pub, nil, config.DefaultMarket())

	_, err = svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	assert.ErrorIs(t, err, dbDown)
	assert.Equal(t, "500", f.balance(t, f.buyer.ID))

	stored, err := f.store.GetTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, stored.Status)
}

func TestConfirm_CreditsSellerWithNegativeBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1030")
	l := f.listing(t, "1000")
	// Reconciliation may leave a negative cached balance behind.
	require.NoError(t, f.store.SetBalance(f.ctx, f.seller.ID, dec("-1200")))

	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	_, err = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, "")
	require.NoError(t, err)

	done, err := f.svc.Confirm(f.ctx, tx.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "-200", f.balance(t, f.seller.ID))
}

func TestPay_NoDoubleSpend(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "100")

	// Price 97 carries a fee of 3, so each escrow needs exactly 100.
	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		l := f.listing(t, "97")
		tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
		require.NoError(t, err)
		require.Equal(t, "100", tx.TotalAmount.String())
		ids = append(ids, tx.ID)
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Pay(f.ctx, id, f.buyer.ID, wallet())
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "0", f.balance(t, f.buyer.ID))
	f.assertLedgerConsistent(t, f.buyer.ID)
}

func TestPay_ConcurrentPaysOnSameEscrow(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1000")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertWrongStatus(t, err, models.StatusPaid)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "897", f.balance(t, f.buyer.ID))
	assert.Equal(t, 1, f.pub.count())
}

func TestConfirmAndCancelRace(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1000")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var shipErr, cancelErr error
	wg.Add(2)
	go func() { defer wg.Done(); _, shipErr = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, "TRK") }()
	go func() { defer wg.Done(); _, cancelErr = f.svc.Cancel(f.ctx, tx.ID, f.buyer.ID) }()
	wg.Wait()

	assert.True(t, (shipErr == nil) != (cancelErr == nil), "exactly one of ship/cancel wins")
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)
}

func TestCancel_Refunds(t *testing.T) {
	t.Run("wallet paid is refunded in full", func(t *testing.T) {
		f := newFixture(t)
		f.fund(t, f.buyer.ID, "600")
		l := f.listing(t, "500")
		tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
		require.NoError(t, err)
		require.Equal(t, "515", tx.TotalAmount.String())

		_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
		require.NoError(t, err)
		assert.Equal(t, "85", f.balance(t, f.buyer.ID))
		events := f.pub.count()

		tx, err = f.svc.Cancel(f.ctx, tx.ID, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, tx.Status)
		assert.Equal(t, "600", f.balance(t, f.buyer.ID))
		assert.Equal(t, events, f.pub.count(), "cancel does not notify")
		f.assertLedgerConsistent(t, f.buyer.ID)
	})

	t.Run("card paid leaves wallet unchanged", func(t *testing.T) {
		f := newFixture(t)
		f.fund(t, f.buyer.ID, "10")
		l := f.listing(t, "500")
		tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
		require.NoError(t, err)
		_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, card())
		require.NoError(t, err)

		_, err = f.svc.Cancel(f.ctx, tx.ID, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, "10", f.balance(t, f.buyer.ID))
		f.assertLedgerConsistent(t, f.buyer.ID)
	})

	t.Run("unpaid cancel moves no money", func(t *testing.T) {
		f := newFixture(t)
		l := f.listing(t, "500")
		tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
		require.NoError(t, err)
		_, err = f.svc.Cancel(f.ctx, tx.ID, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, "0", f.balance(t, f.buyer.ID))
	})

	t.Run("shipped cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.fund(t, f.buyer.ID, "600")
		l := f.listing(t, "500")
		tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
		require.NoError(t, err)
		_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
		require.NoError(t, err)
		_, err = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, "TRK")
		require.NoError(t, err)

		_, err = f.svc.Cancel(f.ctx, tx.ID, f.buyer.ID)
		assertWrongStatus(t, err, models.StatusShipped)
		assert.Equal(t, "85", f.balance(t, f.buyer.ID))
	})
}

func TestActorChecks(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1000")
	stranger := f.user(t, "stranger@example.com")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	require.NoError(t, err)

	_, err = f.svc.Ship(f.ctx, tx.ID, f.buyer.ID, "TRK")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.svc.Cancel(f.ctx, tx.ID, f.seller.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.svc.Get(f.ctx, tx.ID, stranger.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.svc.Ship(f.ctx, tx.ID, f.seller.ID, "TRK")
	require.NoError(t, err)

	_, err = f.svc.Confirm(f.ctx, tx.ID, f.seller.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// Authorization is checked before status.
	_, err = f.svc.Ship(f.ctx, tx.ID, stranger.ID, "TRK")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.svc.Confirm(f.ctx, uuid.New(), f.buyer.ID)
	assert.ErrorIs(t, err, domainerrors.ErrTransactionNotFound)
}

func TestTerminalImmutability(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "1000")

	completedListing := f.listing(t, "100")
	completed, err := f.svc.Create(f.ctx, f.buyer.ID, completedListing.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(f.ctx, completed.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	_, err = f.svc.Ship(f.ctx, completed.ID, f.seller.ID, "TRK")
	require.NoError(t, err)
	_, err = f.svc.Confirm(f.ctx, completed.ID, f.buyer.ID)
	require.NoError(t, err)

	cancelledListing := f.listing(t, "200")
	cancelled, err := f.svc.Create(f.ctx, f.buyer.ID, cancelledListing.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(f.ctx, cancelled.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	_, err = f.svc.Cancel(f.ctx, cancelled.ID, f.buyer.ID)
	require.NoError(t, err)

	buyerBefore := f.balance(t, f.buyer.ID)
	sellerBefore := f.balance(t, f.seller.ID)
	eventsBefore := f.pub.count()

	for _, tc := range []struct {
		tx     *models.Transaction
		status models.TransactionStatus
	}{
		{completed, models.StatusCompleted},
		{cancelled, models.StatusCancelled},
	} {
		_, err = f.svc.Pay(f.ctx, tc.tx.ID, f.buyer.ID, wallet())
		assertWrongStatus(t, err, tc.status)
		_, err = f.svc.Ship(f.ctx, tc.tx.ID, f.seller.ID, "TRK")
		assertWrongStatus(t, err, tc.status)
		_, err = f.svc.Confirm(f.ctx, tc.tx.ID, f.buyer.ID)
		assertWrongStatus(t, err, tc.status)
		_, err = f.svc.Cancel(f.ctx, tc.tx.ID, f.buyer.ID)
		assertWrongStatus(t, err, tc.status)
	}

	assert.Equal(t, buyerBefore, f.balance(t, f.buyer.ID))
	assert.Equal(t, sellerBefore, f.balance(t, f.seller.ID))
	assert.Equal(t, eventsBefore, f.pub.count())
	f.assertLedgerConsistent(t, f.buyer.ID, f.seller.ID)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e notification.Event) bool {
		return e.Type == notification.EventEscrowPaid && e.RecipientID == f.seller.ID
	})).Return(errors.New("broker unavailable")).Once()

	svc := NewService(f.store, payment.NewService(nil, nil, "TRY"), pub, nil, config.DefaultMarket())
	f.fund(t, f.buyer.ID, "500")
	l := f.listing(t, "100")
	tx, err := svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	tx, err = svc.Pay(f.ctx, tx.ID, f.buyer.ID, wallet())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, tx.Status)
	assert.Equal(t, "397", f.balance(t, f.buyer.ID))
	pub.AssertExpectations(t)
}

func TestListMineAndGet(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.buyer.ID, "100")
	l := f.listing(t, "100")
	tx, err := f.svc.Create(f.ctx, f.buyer.ID, l.ID)
	require.NoError(t, err)

	buyerViews, err := f.svc.ListMine(f.ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, buyerViews, 1, "deposits are not listed")
	assert.True(t, buyerViews[0].IsBuyer)
	assert.False(t, buyerViews[0].IsSeller)
	assert.Equal(t, l.Title, buyerViews[0].ListingTitle)

	sellerView, err := f.svc.Get(f.ctx, tx.ID, f.seller.ID)
	require.NoError(t, err)
	assert.True(t, sellerView.IsSeller)
}
