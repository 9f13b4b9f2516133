// Package ledger defines how a user's spendable balance follows from the
// transaction history and verifies the cached users.balance column against it.
package ledger

import (
	"pazar/internal/models"

	"github.com/shopspring/decimal"
)

// Derive computes the balance of userID from its transaction history. It adds
// completed deposits and completed escrow sales (amount, fee excluded). It
// subtracts wallet-paid escrow purchases in paid, shipped or completed
// (totalAmount), withdrawals that were not cancelled and completed wallet-paid
// promotions.
func Derive(userID uint, txs []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for i := range txs {
		balance = balance.Add(Effect(userID, &txs[i]))
	}
	return balance
}

// Effect is the signed contribution of a single transaction to userID's balance.
func Effect(userID uint, tx *models.Transaction) decimal.Decimal {
	switch tx.Type {
	case models.TransactionTypeDeposit:
		if tx.IsBuyer(userID) && tx.Status == models.StatusCompleted {
			return tx.Amount
		}
	case models.TransactionTypeWithdraw:
		if tx.IsBuyer(userID) && tx.Status != models.StatusCancelled {
			return tx.Amount.Neg()
		}
	case models.TransactionTypeEscrowPurchase:
		var effect decimal.Decimal
		if tx.IsSeller(userID) && tx.Status == models.StatusCompleted {
			effect = effect.Add(tx.Amount)
		}
		if tx.IsBuyer(userID) && tx.PaymentMethod == models.PaymentMethodWallet && holdsBuyerFunds(tx.Status) {
			effect = effect.Sub(tx.TotalAmount)
		}
		return effect
	case models.TransactionTypePromotion:
		if tx.IsBuyer(userID) && tx.PaymentMethod == models.PaymentMethodWallet && tx.Status == models.StatusCompleted {
			return tx.TotalAmount.Neg()
		}
	}
	return decimal.Zero
}

func holdsBuyerFunds(s models.TransactionStatus) bool {
	return s == models.StatusPaid || s == models.StatusShipped || s == models.StatusCompleted
}

// ServiceFee is the platform fee for an escrow purchase, rounded half-up to whole units.
func ServiceFee(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(rate).Round(0)
}
