package validation

import (
	"testing"
	"time"

	domainerrors "pazar/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAmount(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"10", true},
		{"10.25", true},
		{"0", false},
		{"-5", false},
		{"1.005", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			v := New()
			v.Amount("amount", d(tt.amount))
			assert.Equal(t, tt.valid, v.Valid())
		})
	}
}

func TestAddError_FirstMessageWins(t *testing.T) {
	v := New()
	v.Amount("amount", d("-0.001"))
	assert.Equal(t, "must be positive", v.Errors["amount"])
	assert.True(t, v.Has("amount"))
	assert.False(t, v.Has("destination"))
}

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=5"`
	Skip  string `json:"-" validate:"required"`
}

func TestStruct_UsesJSONNames(t *testing.T) {
	v := New()
	v.Struct(signup{Email: "nope", Name: "too long", Skip: "x"})
	assert.Equal(t, map[string]string{
		"email": "must be a valid email address",
		"name":  "must not be more than 5 characters long",
	}, v.Errors)

	v = New()
	v.Struct(signup{Email: "a@example.com", Name: "Ada", Skip: "x"})
	assert.True(t, v.Valid())
}

func TestErr(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err(domainerrors.ErrInvalidListing))

	v.Required("title", " ")
	v.Amount("price", d("0"))
	err := v.Err(domainerrors.ErrInvalidListing)

	var de *domainerrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidListing)
	assert.Equal(t, domainerrors.KindValidation, de.Kind)
	assert.Equal(t, "invalid listing: price must be positive; title must not be empty", de.Message)
	assert.Len(t, de.Fields, 2)
	assert.Empty(t, domainerrors.ErrInvalidListing.Fields, "the sentinel is never mutated")
}

func TestCard(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name                     string
		number, month, year, cvv string
		field                    string
	}{
		{"valid", "4242424242424242", "12", "2030", "123", ""},
		{"token", "tok_visa", "", "", "", ""},
		{"this month", "4242424242424242", "05", "26", "", ""},
		{"luhn", "4242424242424241", "12", "2030", "", "card_number"},
		{"short", "42424242", "12", "2030", "", "card_number"},
		{"cvv letters", "4242424242424242", "12", "2030", "12a", "cvv"},
		{"month", "4242424242424242", "0", "2030", "", "expiry_month"},
		{"expired", "4242424242424242", "04", "2026", "", "expiry_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Card(tt.number, tt.month, tt.year, tt.cvv, now)
			if tt.field == "" {
				assert.True(t, v.Valid(), "%v", v.Errors)
				return
			}
			assert.True(t, v.Has(tt.field), "%v", v.Errors)
		})
	}
}

func TestWithdrawal(t *testing.T) {
	v := New()
	v.Withdrawal(d("10"), "TR33 0006 1005 1978 6457 8413 26")
	assert.True(t, v.Valid())

	v = New()
	v.Withdrawal(d("10.001"), "")
	assert.True(t, v.Has("amount"))
	assert.True(t, v.Has("destination"))
}
