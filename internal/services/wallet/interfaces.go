package wallet

import (
	"context"

	"pazar/internal/models"
	"pazar/internal/services/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the main wallet service interface
type Service interface {
	// Read model
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)

	// Balance operations; both return the new balance
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, destination string) (decimal.Decimal, error)

	// Withdrawal settlement (admin)
	SettleWithdrawal(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	CancelWithdrawal(ctx context.Context, id uuid.UUID) (*models.Transaction, error)

	// Saved payment methods
	ListCards(ctx context.Context, userID uint) (models.SavedCards, error)
	AddCard(ctx context.Context, userID uint, card payment.CardInput) (models.SavedCards, error)
	RemoveCard(ctx context.Context, userID uint, cardID string) (models.SavedCards, error)
}
