package services

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable category of a service failure.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindInsufficientStock   Kind = "insufficient_stock"
	KindPersistence         Kind = "persistence_failure"
	KindPaymentVerification Kind = "payment_verification_failure"
	KindDuplicateRequest    Kind = "duplicate_request"
	KindUnauthorized        Kind = "unauthorized"
	KindConflict            Kind = "conflict"
)

// Error is returned by every service in this package. Message is safe to show
// to a caller; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// ProductID is set for stock and lookup failures on a cart line.
	ProductID uint
	// OrderID is set on KindDuplicateRequest to the order already recorded.
	OrderID uint
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindPersistence for errors that did not
// originate in this package.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistence
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func productNotFound(productID uint) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf("product %d not found", productID),
		ProductID: productID,
	}
}

func insufficientStock(productID uint, name string, available, requested int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s: %d available, %d requested", name, available, requested),
		ProductID: productID,
	}
}

func persistenceFailure(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func paymentVerificationFailure(message string, err error) *Error {
	return &Error{Kind: KindPaymentVerification, Message: message, Err: err}
}
