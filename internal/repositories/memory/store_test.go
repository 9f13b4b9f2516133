package memory

import (
	"context"
	"errors"
	"testing"

	"pazar/internal/models"
	"pazar/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestExecuteInTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := &models.User{Email: "a@example.com", Name: "A"}
	require.NoError(t, s.CreateUser(ctx, user))

	boom := errors.New("boom")
	err := s.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.AdjustBalance(ctx, user.ID, decimal.NewFromInt(100)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestAdjustBalance_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := &models.User{Email: "a@example.com", Name: "A"}
	require.NoError(t, s.CreateUser(ctx, user))

	bal, err := s.AdjustBalance(ctx, user.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(10)))

	_, err = s.AdjustBalance(ctx, user.ID, decimal.NewFromInt(-11))
	assert.ErrorIs(t, err, repositories.ErrInsufficientFunds)

	_, err = s.AdjustBalance(ctx, 99, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAdjustBalance_CreditsApplyToNegativeBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := &models.User{Email: "a@example.com", Name: "A"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.SetBalance(ctx, user.ID, decimal.NewFromInt(-200)))

	bal, err := s.AdjustBalance(ctx, user.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(-100)), "got %s", bal)

	_, err = s.AdjustBalance(ctx, user.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, repositories.ErrInsufficientFunds)

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(-100)))
}

func TestFindActiveEscrow(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.FindActiveEscrow(ctx, 3, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	tx := &models.Transaction{
		BuyerID:   uintPtr(1),
		SellerID:  uintPtr(2),
		ListingID: uintPtr(3),
		Type:      models.TransactionTypeEscrowPurchase,
		Status:    models.StatusPaid,
	}
	require.NoError(t, s.CreateTransaction(ctx, tx))

	found, err := s.FindActiveEscrow(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, found.ID)
	assert.Equal(t, models.StatusPaid, found.Status)

	_, err = s.FindActiveEscrow(ctx, 3, 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCreateTransaction_RejectsSecondActiveEscrow(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	escrow := func() *models.Transaction {
		return &models.Transaction{
			BuyerID:   uintPtr(1),
			SellerID:  uintPtr(2),
			ListingID: uintPtr(3),
			Type:      models.TransactionTypeEscrowPurchase,
			Status:    models.StatusPendingPayment,
		}
	}

	first := escrow()
	require.NoError(t, s.CreateTransaction(ctx, first))
	assert.ErrorIs(t, s.CreateTransaction(ctx, escrow()), repositories.ErrDuplicateEscrow)

	require.NoError(t, s.TransitionTransaction(ctx, first.ID, models.StatusPendingPayment,
		models.StatusChange{To: models.StatusCancelled}))
	assert.NoError(t, s.CreateTransaction(ctx, escrow()))
}

func TestTransitionTransaction_ConditionalOnStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tx := &models.Transaction{Type: models.TransactionTypeEscrowPurchase, Status: models.StatusPaid}
	require.NoError(t, s.CreateTransaction(ctx, tx))

	err := s.TransitionTransaction(ctx, tx.ID, models.StatusPendingPayment, models.StatusChange{To: models.StatusPaid})
	assert.ErrorIs(t, err, repositories.ErrStatusChanged)

	err = s.TransitionTransaction(ctx, tx.ID, models.StatusPaid,
		models.StatusChange{To: models.StatusShipped, TrackingNumber: "TRK1"})
	require.NoError(t, err)

	got, err := s.GetTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)
	assert.Equal(t, "TRK1", got.TrackingNumber)
}

func TestMarkListingSold_Once(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := &models.Listing{Title: "Bike", Price: decimal.NewFromInt(100), SellerID: 1}
	require.NoError(t, s.CreateListing(ctx, l))

	require.NoError(t, s.MarkListingSold(ctx, l.ID))
	assert.ErrorIs(t, s.MarkListingSold(ctx, l.ID), repositories.ErrAlreadySold)
	assert.ErrorIs(t, s.UpdateListing(ctx, l), repositories.ErrAlreadySold)
}
