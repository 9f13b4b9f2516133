package payment

import (
	"strings"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
)

// Request selects how a purchase is funded. Card carries raw card data for
// method card; SavedCardID references one of the payer's saved cards.
type Request struct {
	Method      models.PaymentMethod `json:"payment_method"`
	Card        *CardInput           `json:"card,omitempty"`
	SavedCardID string               `json:"saved_card_id,omitempty"`
}

// Validate checks that the request carries what its method needs.
func (r Request) Validate() error {
	switch r.Method {
	case models.PaymentMethodWallet:
		return nil
	case models.PaymentMethodCard:
		if r.Card == nil {
			return domainerrors.ErrInvalidCard.WithMessage("card details are required")
		}
		return nil
	case models.PaymentMethodSavedCard:
		if strings.TrimSpace(r.SavedCardID) == "" {
			return domainerrors.ErrCardNotFound
		}
		return nil
	default:
		return domainerrors.ErrInvalidPaymentMethod
	}
}
