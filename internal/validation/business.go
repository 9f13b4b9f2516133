package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal validates a payout request.
func (v *Validator) Withdrawal(amount decimal.Decimal, destination string) {
	v.Amount("amount", amount)
	v.Required("destination", destination)
	v.MaxLength("destination", destination, MaxDestinationLength)
}

// Listing validates the free-text and price fields of a listing.
func (v *Validator) Listing(title, description string, price decimal.Decimal) {
	v.Required("title", title)
	v.MaxLength("title", title, MaxTitleLength)
	v.MaxLength("description", description, MaxDescriptionLength)
	v.Amount("price", price)
}

// Card validates raw card data. Processor test tokens ("tok_...") pass as-is.
func (v *Validator) Card(number, expiryMonth, expiryYear, cvv string, now time.Time) {
	if strings.HasPrefix(number, "tok_") {
		return
	}
	v.Var("card_number", number, "required,credit_card")
	v.Var("cvv", cvv, "omitempty,number,min=3,max=4")

	month, err := strconv.Atoi(expiryMonth)
	if err != nil || month < 1 || month > 12 {
		v.AddError("expiry_month", "must be between 1 and 12")
		return
	}
	year, err := strconv.Atoi(expiryYear)
	if err != nil {
		v.AddError("expiry_year", "must be a year")
		return
	}
	if year < 100 {
		year += 2000
	}
	v.Check(year > now.Year() || (year == now.Year() && month >= int(now.Month())),
		"expiry_year", "card has expired")
}
