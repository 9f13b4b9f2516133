package wallet

// Operation names reported to the metrics collector
const (
	OpDeposit          = "deposit"
	OpWithdraw         = "withdraw"
	OpSettleWithdrawal = "settle_withdrawal"
	OpCancelWithdrawal = "cancel_withdrawal"
	OpAddCard          = "add_card"
	OpRemoveCard       = "remove_card"
)

// Default configuration values
const (
	DefaultCurrency     = "TRY"
	DefaultHistoryLimit = 100
)

const (
	depositDescription = "Wallet top-up"
	withdrawPrefix     = "Withdrawal to "
)
