package errors

var (
	ErrInsufficientBalance = &DomainError{
		Kind:    KindConflict,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be positive with at most two decimal places",
	}
	ErrInvalidDestination = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_DESTINATION",
		Message: "withdrawal destination is required",
	}
	ErrWithdrawalNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WITHDRAWAL_NOT_FOUND",
		Message: "withdrawal not found",
	}
	ErrWithdrawalNotPending = &DomainError{
		Kind:    KindConflict,
		Code:    "WITHDRAWAL_NOT_PENDING",
		Message: "withdrawal is no longer pending",
	}
	ErrCardNotFound = &DomainError{
		Kind:    KindValidation,
		Code:    "CARD_NOT_FOUND",
		Message: "saved card not found",
	}
	ErrInvalidCard = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_CARD",
		Message: "invalid card details",
	}
	ErrPaymentDeclined = &DomainError{
		Kind:    KindConflict,
		Code:    "PAYMENT_DECLINED",
		Message: "card payment was declined",
	}
	ErrUserBanned = &DomainError{
		Kind:    KindForbidden,
		Code:    "USER_BANNED",
		Message: "account is banned",
	}
)
