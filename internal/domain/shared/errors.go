package shared

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// DiscountKind distinguishes percentage discounts from fixed-amount discounts
type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "PERCENT"
	DiscountKindAmount  DiscountKind = "AMOUNT"
)

// BusinessError represents a business-rule or access violation surfaced to the caller.
// Business errors are expected outcomes: they carry an HTTP-style status code and are
// not reported to operational alerting. Configuration errors are the exception - they
// indicate a defect and must be reported.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	report  bool
}

// Error implements the error interface
func (e *BusinessError) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP-style status code for transport translation
func (e *BusinessError) HTTPStatus() int {
	return e.Status
}

// ShouldReport returns true only for defect-class errors that must reach alerting
func (e *BusinessError) ShouldReport() bool {
	return e.report
}

// NewBusinessError creates a business-rule violation (422, not reported)
func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewAccessError creates a cross-branch or missing-scope violation (403, not reported)
func NewAccessError(code, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NewConfigError creates a defect-class error (500, reported to alerting)
func NewConfigError(code, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Status:  http.StatusInternalServerError,
		report:  true,
	}
}

// NewInsufficientStockError is raised when an outbound movement would overdraw
// the derived balance for a product
func NewInsufficientStockError(productName string, available, requested decimal.Decimal) *BusinessError {
	return NewBusinessError(
		"INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s: %s available, %s requested",
			productName, available.String(), requested.String()),
	)
}

// NewInvalidDiscountError is raised when a discount exceeds the configured maximum.
// Percent discounts render with a percent sign, amount discounts with a currency marker.
func NewInvalidDiscountError(attempted, max decimal.Decimal, kind DiscountKind) *BusinessError {
	var msg string
	switch kind {
	case DiscountKindPercent:
		msg = fmt.Sprintf("Discount of %s%% exceeds the maximum allowed %s%%",
			attempted.String(), max.String())
	default:
		msg = fmt.Sprintf("Discount of ¥%s exceeds the maximum allowed ¥%s",
			attempted.String(), max.String())
	}
	return NewBusinessError("INVALID_DISCOUNT", msg)
}

// NewNoBranchSelectedError is raised when a non-super-admin principal has no
// branch assigned but attempts a branch-scoped operation
func NewNoBranchSelectedError(message string) *BusinessError {
	if message == "" {
		message = "No branch selected for the current user"
	}
	return NewAccessError("NO_BRANCH_SELECTED", message)
}

// NewInvalidTransitionError is raised when a lifecycle entity is moved to a state
// its transition table does not allow
func NewInvalidTransitionError(from, to string) *BusinessError {
	return NewBusinessError(
		"INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", from, to),
	)
}

// Common domain errors
var (
	ErrNotFound            = &BusinessError{Code: "NOT_FOUND", Message: "Resource not found", Status: http.StatusNotFound}
	ErrAlreadyExists       = NewBusinessError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewBusinessError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewBusinessError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden           = NewAccessError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewBusinessError("INVALID_STATE", "Operation not allowed in current state")
)
