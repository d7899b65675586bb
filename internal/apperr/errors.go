// Package apperr classifies business failures so that callers at the request
// boundary can turn them into stable rejections.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnverified        Kind = "unverified"
	KindUnavailable       Kind = "unavailable"
	KindInvalidInput      Kind = "invalid_input"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindInvalidState      Kind = "invalid_state"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so package-level
// sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }

// InsufficientStock names the food whose stock cannot cover the request.
func InsufficientStock(foodName string, requested, available int) *Error {
	return Newf(KindInsufficientStock,
		"insufficient stock for %s: requested %d, available %d", foodName, requested, available)
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUserNotFound       = NotFound("user not found")
	ErrFoodNotFound       = NotFound("food not found")
	ErrCartNotFound       = NotFound("cart not found")
	ErrCartItemNotFound   = NotFound("item not found in cart")
	ErrOrderNotFound      = NotFound("order not found")
	ErrPaymentNotFound    = NotFound("payment not found")
	ErrUnverified         = New(KindUnverified, "user is not verified")
	ErrFoodUnavailable    = New(KindUnavailable, "food is not available")
	ErrInvalidQuantity    = InvalidInput("quantity must be greater than zero")
	ErrEmptyCart          = InvalidInput("cart is empty")
	ErrPendingOrderExists = Conflict("user already has a pending order")
	ErrAlreadyPaid        = Conflict("order already paid")
	ErrNotOrderOwner      = Forbidden("order does not belong to user")
	ErrCancelNotPending   = InvalidState("only pending orders can be cancelled")
	ErrPayNotPending      = InvalidState("only pending orders can be paid")
)
