package errors

var (
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrWrongStatus = &DomainError{
		Kind:    KindConflict,
		Code:    "WRONG_STATUS",
		Message: "operation not allowed in the current status",
	}
	ErrAlreadySold = &DomainError{
		Kind:    KindConflict,
		Code:    "ALREADY_SOLD",
		Message: "listing is already sold",
	}
	ErrAlreadyActive = &DomainError{
		Kind:    KindConflict,
		Code:    "ALREADY_ACTIVE",
		Message: "an active escrow already exists for this listing",
	}
	ErrOwnListing = &DomainError{
		Kind:    KindValidation,
		Code:    "OWN_LISTING",
		Message: "cannot buy your own listing",
	}
	ErrInvalidPaymentMethod = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_PAYMENT_METHOD",
		Message: "payment method must be card, wallet or savedCard",
	}
)
