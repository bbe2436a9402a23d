package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidCart          = errors.New("invalid cart")
	ErrInvalidOrderNumber   = errors.New("invalid order number")
	ErrUnknownUnit          = errors.New("unknown unit")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderNumberTaken     = errors.New("order number already taken")
	ErrOrderNumberExhausted = errors.New("could not allocate an order number: system busy, try again")
	ErrLockTimeout          = errors.New("stock is locked by another checkout")
	ErrTotalMismatch        = errors.New("quoted total does not match computed total")
)

// ValidationError describes a malformed checkout request. It is raised before
// any transaction is opened.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid cart: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid cart: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCart }

// NotFoundError reports a catalog or member reference that does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError names the stock item that blocked the checkout.
type InsufficientStockError struct {
	Kind      string
	ID        int64
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %q (id %d): required %s%s, available %s%s",
		e.Kind, e.Name, e.ID, e.Required, e.Unit, e.Available, e.Unit)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
