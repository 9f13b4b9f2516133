/*
Package wallet manages a user's marketplace balance.

The balance lives on the user row and only moves through ledger records:

  - Deposit writes a completed deposit and credits the same amount.
  - Withdraw debits immediately and leaves a pending withdrawal that an
    admin later settles or cancels (cancel re-credits).
  - Saved cards are tokenized and masked before they are stored.

Usage:

	svc := wallet.NewService(store, payments, balances, wallet.WalletConfig{Currency: "TRY"}, nil)

	balance, err := svc.Deposit(ctx, userID, decimal.NewFromInt(500))

	balance, err = svc.Withdraw(ctx, userID, decimal.NewFromInt(200), "TR33 0006 1005 1978 6457 8413 26")

Cache Management:

GetBalance reads through the balance cache. Every committed mutation
invalidates the user's entry; the cache is never consulted for a decision.
*/
package wallet
