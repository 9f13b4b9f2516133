package models

import "github.com/shopspring/decimal"

// Wallet is the read model served by the wallet endpoint. It is derived from the
// user row and the transaction history and is never persisted on its own.
type Wallet struct {
	UserID       uint            `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	Transactions []Transaction   `json:"transactions"`
	SavedCards   SavedCards      `json:"saved_cards"`
}

// BalanceCheck is the outcome of recomputing a balance from the ledger.
type BalanceCheck struct {
	UserID   uint            `json:"user_id"`
	Computed decimal.Decimal `json:"computed"`
	Cached   decimal.Decimal `json:"cached"`
	Matched  bool            `json:"matched"`
	Repaired bool            `json:"repaired,omitempty"`
}
