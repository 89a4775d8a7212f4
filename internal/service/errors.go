package service

import (
	"errors"

	"github.com/Skotchmaster/storefront/internal/checkout"
)

var (
	ErrValidation        = errors.New("validation")         // 422
	ErrEmptyCart         = errors.New("cart is empty")      // 400
	ErrPersistence       = errors.New("persistence failed") // 503
	ErrNotification      = errors.New("notification failed")
	ErrNotFound          = errors.New("order not found")    // 404
	ErrInvalidTransition = errors.New("invalid transition") // 409
)

// ValidationError carries the per-field messages of a rejected checkout form.
type ValidationError struct {
	Fields checkout.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
