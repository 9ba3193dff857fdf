package usecase

import (
	"errors"
	"fmt"
)

// Validation errors: rejected before any gateway call or cache write.
var (
	ErrEmptyCart        = errors.New("products array is required")
	ErrMissingReference = errors.New("client reference id is required")
)

// Not-found outcomes.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// ErrPaymentNotCompleted means the gateway session exists but is not in
// the paid state.
var ErrPaymentNotCompleted = errors.New("payment not successful")

// GatewayError wraps a failed or malformed gateway exchange, keeping any
// upstream-supplied detail for the caller.
type GatewayError struct {
	Op     string // e.g. "create session"
	Status int    // upstream HTTP status, 0 if the call itself failed
	Detail string // upstream-supplied description, if any
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("gateway %s: %s", e.Op, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s failed (status %d)", e.Op, e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure. The pending cache entry is left
// intact so the operation stays retriable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }
