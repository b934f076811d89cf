package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeDuplicateReview   = "DUPLICATE_REVIEW"
	ErrCodeReviewNotAllowed  = "REVIEW_NOT_ALLOWED"
	ErrCodeUpstreamService   = "UPSTREAM_SERVICE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound  = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrReviewNotFound   = NewDomainError(ErrCodeNotFound, "Review not found")
	ErrUserNotFound     = NewDomainError(ErrCodeNotFound, "User not found")
	ErrEmptyCart        = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrForbidden        = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action")
	ErrDuplicateReview  = NewDomainError(ErrCodeDuplicateReview, "You have already reviewed this product")
	ErrReviewNotAllowed = NewDomainError(ErrCodeReviewNotAllowed, "You can only review products from delivered orders")
	ErrInvalidQuantity  = NewDomainError(ErrCodeInvalidInput, "Quantity must be greater than zero")
)

// NewInsufficientStockError names the offending product and its available count.
func NewInsufficientStockError(productName string, available int) *DomainError {
	return NewDomainError(
		ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %q: only %d available", productName, available),
	)
}

// NewInvalidTransitionError describes an illegal order status change.
func NewInvalidTransitionError(from, to OrderStatus) *DomainError {
	return NewDomainError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot change order status from %q to %q", from, to),
	)
}

// NewInvalidInputError wraps a validation failure message.
func NewInvalidInputError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message)
}

// NewUpstreamServiceError wraps a failure from the AI collaborator.
func NewUpstreamServiceError(message string) *DomainError {
	return NewDomainError(ErrCodeUpstreamService, message)
}
