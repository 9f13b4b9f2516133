package errors

var (
	ErrInvalidCredentials = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
	}
	ErrEmailTaken = &DomainError{
		Kind:    KindConflict,
		Code:    "EMAIL_TAKEN",
		Message: "email is already registered",
	}
	ErrInvalidRegistration = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_REGISTRATION",
		Message: "invalid registration",
	}
)
