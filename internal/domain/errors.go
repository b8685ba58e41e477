package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details. Anything not wrapping one of these is treated as an
// infrastructure failure and reported as a generic 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Verification flow.
	ErrExpired      = errors.New("code expired")
	ErrCodeMismatch = errors.New("code mismatch")

	// Order lifecycle.
	ErrStateConflict = errors.New("state conflict")
	ErrWindowClosed  = errors.New("return window closed")
	ErrEmptyCart     = errors.New("empty cart")
)
