package payment

import (
	"strings"
	"time"

	domainerrors "pazar/internal/errors"
	"pazar/internal/validation"
)

// CardInput is raw card data as submitted by the client. It is only held for the
// duration of a request; PAN and CVV are never persisted.
type CardInput struct {
	Number      string `json:"card_number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// Normalized strips spaces and dashes from the card number.
func (c CardInput) Normalized() CardInput {
	c.Number = strings.NewReplacer(" ", "", "-", "").Replace(c.Number)
	c.HolderName = strings.TrimSpace(c.HolderName)
	return c
}

// Validate checks the card number, expiry and CVV.
func (c CardInput) Validate(now time.Time) error {
	v := validation.New()
	v.Card(c.Number, c.ExpiryMonth, c.ExpiryYear, c.CVV, now)
	return v.Err(domainerrors.ErrInvalidCard)
}

// Mask renders a card number as "**** **** **** 4242".
func Mask(lastFour string) string {
	return "**** **** **** " + lastFour
}
