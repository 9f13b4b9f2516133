// Package validation accumulates field errors for request input and turns them
// into a domain validation error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	domainerrors "pazar/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// tags runs the `validate` struct tags. Field errors are keyed by json name.
var tags = newTagValidator()

func newTagValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator defines validation methods
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// Has reports whether field failed validation.
func (v *Validator) Has(field string) bool {
	_, ok := v.Errors[field]
	return ok
}

// AddError records message for field. The first error per field wins.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks that value is not empty or zero.
func (v *Validator) Required(field string, value interface{}) {
	if value == nil {
		v.AddError(field, "must not be empty")
		return
	}

	switch val := value.(type) {
	case string:
		v.Check(strings.TrimSpace(val) != "", field, "must not be empty")
	case []string:
		v.Check(len(val) > 0, field, "must contain at least one item")
	case decimal.Decimal:
		v.Check(!val.IsZero(), field, "must not be zero")
	case int:
		v.Check(val != 0, field, "must not be zero")
	case uint:
		v.Check(val != 0, field, "must not be zero")
	}
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len([]rune(value)) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// Amount checks a money value: positive with at most two decimal places.
func (v *Validator) Amount(field string, amount decimal.Decimal) {
	v.Check(amount.IsPositive(), field, "must be positive")
	v.Check(amount.Equal(amount.Truncate(MoneyScale)), field,
		fmt.Sprintf("must have at most %d decimal places", MoneyScale))
}

// Var checks a single value against a validator tag such as "number,len=3".
func (v *Validator) Var(field string, value interface{}, tag string) {
	v.collect(field, tags.Var(value, tag))
}

// Struct checks s against its `validate` tags.
func (v *Validator) Struct(s interface{}) {
	v.collect("", tags.Struct(s))
}

func (v *Validator) collect(field string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError(fallback(field, "input"), err.Error())
		return
	}
	for _, fe := range fieldErrs {
		v.AddError(fallback(field, fe.Field()), message(fe))
	}
}

// Err returns nil when valid, otherwise a copy of base carrying the field errors.
func (v *Validator) Err(base *domainerrors.DomainError) error {
	if v.Valid() {
		return nil
	}
	return base.WithFields(v.Errors)
}

func fallback(field, other string) string {
	if field != "" {
		return field
	}
	return other
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must not be more than %s characters long", fe.Param())
		}
		return "must not be more than " + fe.Param()
	case "number":
		return "must contain only digits"
	case "credit_card":
		return "must be a valid card number"
	case "e164":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
