package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for order admission failures. All are terminal for the
// order being processed; the caller decides whether to resubmit.
var (
	// ErrInsufficientFunds - buy order total cost exceeds the user's balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings - sell order quantity exceeds the held quantity
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrBusy - a per-user or per-symbol lock could not be acquired within
	// the configured timeout. Retryable by the caller.
	ErrBusy = errors.New("resource busy")

	// ErrInvalidQuantity - order quantity is zero or negative
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// NotFoundError indicates an absent entity (user, asset, portfolio, holding)
type NotFoundError struct {
	Entity string
	Key    string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFound creates a NotFoundError for the given entity and key
func NewNotFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
