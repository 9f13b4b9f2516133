package ledger

import (
	"context"
	"errors"
	"fmt"

	domainerrors "pazar/internal/errors"
	"pazar/internal/repositories"

	"github.com/shopspring/decimal"
)

// Debit takes amount from the user's cached balance inside tx. A refused debit
// is reported with the balance the user actually has.
func Debit(ctx context.Context, tx repositories.UserRepository, userID uint, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	balance, err := tx.AdjustBalance(ctx, userID, amount.Neg())
	if err == nil {
		return balance, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return decimal.Zero, domainerrors.ErrUserNotFound
	}
	if !errors.Is(err, repositories.ErrInsufficientFunds) {
		return decimal.Zero, err
	}

	refused := domainerrors.ErrInsufficientBalance.WithMessage(
		"insufficient wallet balance: %s %s required", amount.StringFixed(2), currency)
	user, getErr := tx.GetUserByID(ctx, userID)
	if getErr != nil {
		return decimal.Zero, fmt.Errorf("read balance after refused debit: %w", getErr)
	}
	return decimal.Zero, refused.WithBalance(user.Balance)
}
