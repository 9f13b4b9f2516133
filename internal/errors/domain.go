// Package errors holds the domain error taxonomy shared by services and handlers.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind classifies a DomainError so transport layers can map it to a status code.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// DomainError is an expected business outcome returned to the caller.
type DomainError struct {
	Kind          Kind   `json:"kind"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	CurrentStatus string `json:"current_status,omitempty"`
	// CurrentBalance is the wallet balance at the time a debit was refused.
	CurrentBalance string `json:"current_balance,omitempty"`
	// ResourceID names the existing record a conflict ran into.
	ResourceID string            `json:"resource_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *DomainError) Error() string {
	var details []string
	if e.CurrentStatus != "" {
		details = append(details, "current status: "+e.CurrentStatus)
	}
	if e.CurrentBalance != "" {
		details = append(details, "current balance: "+e.CurrentBalance)
	}
	if len(details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(details, ", "))
}

// Is matches on Code, so copies carrying extra context still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithStatus returns a copy of e that reports the record's actual status.
func (e *DomainError) WithStatus(status string) *DomainError {
	cp := *e
	cp.CurrentStatus = status
	return &cp
}

// WithBalance returns a copy of e that reports the wallet's actual balance.
func (e *DomainError) WithBalance(balance decimal.Decimal) *DomainError {
	cp := *e
	cp.CurrentBalance = balance.StringFixed(2)
	return &cp
}

// WithResource returns a copy of e that points at the conflicting record.
func (e *DomainError) WithResource(id string) *DomainError {
	cp := *e
	cp.ResourceID = id
	return &cp
}

// WithFields returns a copy of e carrying per-field validation messages. The
// message lists them in field order.
func (e *DomainError) WithFields(fields map[string]string) *DomainError {
	cp := *e
	cp.Fields = make(map[string]string, len(fields))
	names := make([]string, 0, len(fields))
	for name, msg := range fields {
		cp.Fields[name] = msg
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fields[name])
	}
	if len(parts) > 0 {
		cp.Message = e.Message + ": " + strings.Join(parts, "; ")
	}
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

var (
	ErrForbidden = &DomainError{
		Kind:    KindForbidden,
		Code:    "FORBIDDEN",
		Message: "actor is not allowed to perform this operation",
	}
	ErrUserNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrInternal = &DomainError{
		Kind:    KindInternal,
		Code:    "INTERNAL",
		Message: "internal error",
	}
)
