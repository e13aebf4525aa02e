// Package common defines shared constants, sentinel errors and small helpers
// used across the passkeeper layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Recoverable input errors: the caller re-prompts.
	ErrValidation = errors.New("validation error")
	ErrMismatch   = errors.New("value mismatch")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage error")

	// Ciphertext failed integrity verification or could not be parsed.
	ErrDecryption = errors.New("decryption error")

	// Auth errors.
	ErrUnauthorized     = errors.New("unauthorized")
	ErrLocked           = errors.New("locked pending recovery")
	ErrTerminated       = errors.New("session terminated")
	ErrInvalidState     = errors.New("operation not allowed in current state")
	ErrChallengeExpired = errors.New("challenge expired")
)
