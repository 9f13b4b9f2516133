package errors

var (
	ErrListingNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "LISTING_NOT_FOUND",
		Message: "listing not found",
	}
	ErrListingNotEditable = &DomainError{
		Kind:    KindConflict,
		Code:    "LISTING_NOT_EDITABLE",
		Message: "sold listings cannot be edited",
	}
	ErrInvalidListing = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_LISTING",
		Message: "invalid listing",
	}
	ErrAlreadyFeatured = &DomainError{
		Kind:    KindConflict,
		Code:    "ALREADY_FEATURED",
		Message: "listing is already featured",
	}
	ErrInvalidDuration = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_DURATION",
		Message: "unsupported featured duration",
	}
	ErrPromotionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "PROMOTION_NOT_FOUND",
		Message: "promotion payment not found",
	}
	ErrPromotionExpired = &DomainError{
		Kind:    KindConflict,
		Code:    "PROMOTION_EXPIRED",
		Message: "promotion payment has expired",
	}
)
