package repositories

import (
	"context"
	"errors"
	"os"
	"testing"

	"pazar/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore connects to PAZAR_TEST_DATABASE_URL and migrates it. Tests
// create their own users, so the database can be shared between runs.
func openTestStore(t *testing.T) Store {
	t.Helper()
	dsn := os.Getenv("PAZAR_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PAZAR_TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func newTestUser(t *testing.T, s Store) *models.User {
	t.Helper()
	u := &models.User{Email: uuid.NewString() + "@example.com", Name: "Test", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestGormStore_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newTestUser(t, s)

	bal, err := s.AdjustBalance(ctx, u.ID, dec("10.50"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("10.50")), "got %s", bal)

	_, err = s.AdjustBalance(ctx, u.ID, dec("-10.51"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err = s.AdjustBalance(ctx, u.ID, dec("-10.50"))
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	require.NoError(t, s.SetBalance(ctx, u.ID, dec("-200")))
	bal, err = s.AdjustBalance(ctx, u.ID, dec("100"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("-100")), "credits apply below zero, got %s", bal)

	_, err = s.AdjustBalance(ctx, u.ID, dec("-1"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = s.AdjustBalance(ctx, 0, dec("1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_TransitionTransaction(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newTestUser(t, s)

	tx := &models.Transaction{
		BuyerID: &u.ID, Amount: dec("5"), TotalAmount: dec("5"),
		Type: models.TransactionTypeWithdraw, Status: models.StatusPending,
	}
	require.NoError(t, s.CreateTransaction(ctx, tx))

	err := s.TransitionTransaction(ctx, tx.ID, models.StatusPaid, models.StatusChange{To: models.StatusShipped})
	assert.ErrorIs(t, err, ErrStatusChanged)

	require.NoError(t, s.TransitionTransaction(ctx, tx.ID, models.StatusPending, models.StatusChange{To: models.StatusCompleted}))
	got, err := s.GetTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	err = s.TransitionTransaction(ctx, uuid.New(), models.StatusPending, models.StatusChange{To: models.StatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_ActiveEscrowIndex(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	buyer := newTestUser(t, s)
	seller := newTestUser(t, s)
	listingID := buyer.ID

	escrow := func() *models.Transaction {
		return &models.Transaction{
			BuyerID: &buyer.ID, SellerID: &seller.ID, ListingID: &listingID,
			Amount: dec("100"), TotalAmount: dec("103"),
			Type: models.TransactionTypeEscrowPurchase, Status: models.StatusPendingPayment,
		}
	}

	_, err := s.FindActiveEscrow(ctx, listingID, buyer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := escrow()
	require.NoError(t, s.CreateTransaction(ctx, first))
	assert.ErrorIs(t, s.CreateTransaction(ctx, escrow()), ErrDuplicateEscrow)

	found, err := s.FindActiveEscrow(ctx, listingID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	// A primary-key collision is a plain failure, not a duplicate escrow.
	clash := &models.Transaction{
		ID: first.ID, BuyerID: &buyer.ID, Amount: dec("1"), TotalAmount: dec("1"),
		Type: models.TransactionTypeDeposit, Status: models.StatusCompleted,
	}
	err = s.CreateTransaction(ctx, clash)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateEscrow))

	require.NoError(t, s.TransitionTransaction(ctx, first.ID, models.StatusPendingPayment,
		models.StatusChange{To: models.StatusCancelled}))
	assert.NoError(t, s.CreateTransaction(ctx, escrow()))
}

func TestGormStore_ExecuteInTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newTestUser(t, s)

	boom := errors.New("boom")
	err := s.ExecuteInTransaction(ctx, func(tx Store) error {
		if _, err := tx.AdjustBalance(ctx, u.ID, dec("50")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}
