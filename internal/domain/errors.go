package domain

import "errors"

// Shared domain errors. Services wrap these with detail; handlers map them
// to HTTP statuses with errors.Is.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotVerified            = errors.New("wallet is not verified")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotFound               = errors.New("not found")
	ErrExternalPaymentPending = errors.New("external payment pending")
)
