// Package apperr defines the closed error taxonomy shared by all services.
// Gateways translate these into HTTP status codes; everything else is a
// plain internal error.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError: a referenced record does not exist. Client error, never
// retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// InvalidArgumentError: malformed quantity, price, rate or enum value.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

// InsufficientStockError: business-rule violation, distinct from NotFound.
// Carries the product name so the caller can show a useful message.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

// AlreadyExistsError: uniqueness violation (barcode, username).
type AlreadyExistsError struct {
	Field string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// ConsistencyFaultError: a commit was about to apply partially (for example
// a sale row written but a stock decrement affecting zero rows). The only
// fatal class: it must be logged with full context and must never be
// retried automatically, since a retry could double-apply a decrement.
type ConsistencyFaultError struct {
	Op        string
	ProductID string
	Err       error
}

func (e *ConsistencyFaultError) Error() string {
	return fmt.Sprintf("consistency fault in %s (product %s): %v", e.Op, e.ProductID, e.Err)
}

func (e *ConsistencyFaultError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsInvalidArgument(err error) bool {
	var t *InvalidArgumentError
	return errors.As(err, &t)
}

func IsInsufficientStock(err error) bool {
	var t *InsufficientStockError
	return errors.As(err, &t)
}

func IsAlreadyExists(err error) bool {
	var t *AlreadyExistsError
	return errors.As(err, &t)
}

func IsConsistencyFault(err error) bool {
	var t *ConsistencyFaultError
	return errors.As(err, &t)
}
