package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error.
// Details carries identifiers and amounts so callers can render an actionable message.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors.Is works with sentinel values
// even when the returned error carries details.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error with an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeValidation              = "VALIDATION_ERROR"
	CodeForbidden               = "FORBIDDEN"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInvalidInstallments     = "INVALID_INSTALLMENTS"
	CodeDrawerAlreadyOpen       = "DRAWER_ALREADY_OPEN"
	CodeDrawerNotOpen           = "DRAWER_NOT_OPEN"
	CodeAlreadyClosed           = "ALREADY_CLOSED"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeDuplicateLineItemType   = "DUPLICATE_LINE_ITEM_TYPE"
	CodeOptimisticLock          = "OPTIMISTIC_LOCK_FAILED"
	CodeLockNotObtained         = "LOCK_NOT_OBTAINED"
)

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists           = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation              = NewDomainError(CodeValidation, "Invalid input provided")
	ErrForbidden               = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInsufficientStock       = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidInstallments     = NewDomainError(CodeInvalidInstallments, "Installment count not allowed for this payment method")
	ErrDrawerAlreadyOpen       = NewDomainError(CodeDrawerAlreadyOpen, "Operator already has an open cash drawer")
	ErrDrawerNotOpen           = NewDomainError(CodeDrawerNotOpen, "Cash drawer is not open")
	ErrAlreadyClosed           = NewDomainError(CodeAlreadyClosed, "Cash drawer session is already closed")
	ErrInvalidStatusTransition = NewDomainError(CodeInvalidStatusTransition, "Status transition not allowed")
	ErrDuplicateLineItemType   = NewDomainError(CodeDuplicateLineItemType, "Line item must reference exactly one of product or service")
	ErrOptimisticLock          = NewDomainError(CodeOptimisticLock, "Resource was modified by another transaction")
	ErrLockNotObtained         = NewDomainError(CodeLockNotObtained, "Resource is busy, try again")
)

// NewValidationError creates a validation error with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewTransitionError reports a rejected status change for an aggregate
func NewTransitionError(aggregate string, from, to fmt.Stringer) *DomainError {
	return NewDomainErrorf(CodeInvalidStatusTransition, "Cannot change %s status from %s to %s", aggregate, from, to).
		WithDetail("from", from.String()).
		WithDetail("to", to.String())
}

// IsDomainError reports whether err is a DomainError with the given code
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
