package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound indicates that no order matches the payment reference
	ErrOrderNotFound = errors.New("order not found for payment reference")

	// ErrTimesheetNotFound indicates that no timesheet entry matches the payment reference
	ErrTimesheetNotFound = errors.New("timesheet entry not found for payment reference")

	// ErrReferenceMismatch indicates that the stored payment reference does not
	// match the inbound payment id
	ErrReferenceMismatch = errors.New("stored payment reference does not match inbound payment")

	// ErrCurrencyMismatch indicates that the event currency does not match the
	// order currency
	ErrCurrencyMismatch = errors.New("event currency does not match order currency")

	// ErrReferenceUnresolvable indicates that a payment reference could not be
	// resolved to any order or timesheet entry
	ErrReferenceUnresolvable = errors.New("payment reference could not be resolved")
)

// AmountMismatchError is raised when the gateway-reported amount disagrees
// with the stored order amount beyond the tolerance of one minor unit.
type AmountMismatchError struct {
	OrderID  string
	Expected int64
	Received int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount mismatch for order %s: expected %d, received %d", e.OrderID, e.Expected, e.Received)
}

// NewAmountMismatchError creates a new AmountMismatchError
func NewAmountMismatchError(orderID string, expected, received int64) *AmountMismatchError {
	return &AmountMismatchError{
		OrderID:  orderID,
		Expected: expected,
		Received: received,
	}
}

// IsValidation reports whether err is a permanent validation failure. Such
// events are marked processed with an annotation instead of failed, so the
// gateway does not redeliver something that can never succeed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrTimesheetNotFound) ||
		errors.Is(err, ErrReferenceMismatch) ||
		errors.Is(err, ErrCurrencyMismatch) ||
		errors.Is(err, ErrReferenceUnresolvable)
}
