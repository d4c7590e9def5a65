package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy. Services wrap these sentinels (or return the detail
// structs below, which match them via errors.Is) so callers can branch
// without string matching.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrValidation        = errors.New("invalid input")
)

// StockError names the product and quantities behind one failed
// stock check.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d, have %d)", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// CheckoutStockError carries every violating line found during checkout
// re-validation, not just the first.
type CheckoutStockError struct {
	Violations []StockError
}

func (e *CheckoutStockError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Error()
	}
	return "checkout blocked: " + strings.Join(parts, "; ")
}

func (e *CheckoutStockError) Is(target error) bool { return target == ErrInsufficientStock }

// TransitionError reports an operation attempted from a disallowed
// source state.
type TransitionError struct {
	Entity string
	ID     string
	From   string
	Op     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s %s from status %s", e.Op, e.Entity, e.ID, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
