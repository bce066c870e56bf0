// Package errors provides structured error handling for Kestrel.
// It defines sentinel errors for the wallet core's closed error taxonomy,
// exit codes, and helpers for adding context and suggestions to errors.
//
// Error messages never include passwords, private keys, or mnemonics.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for the CLI harness.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or storage unavailable
)

// KestrelError is the structured error type for Kestrel.
type KestrelError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *KestrelError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *KestrelError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for KestrelError. Two errors match when their
// codes match, so wrapped and annotated variants compare equal to the
// sentinel they were derived from.
func (e *KestrelError) Is(target error) bool {
	var t *KestrelError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors. One per kind in the error taxonomy; callers match on
// these with errors.Is rather than inspecting messages.
var (
	// ErrInvalidPassword indicates the password violates policy (too short).
	ErrInvalidPassword = &KestrelError{
		Code:     "INVALID_PASSWORD",
		Message:  "password must be at least 8 characters",
		ExitCode: ExitInput,
	}

	// ErrInvalidMnemonic indicates a bad word count or checksum failure.
	ErrInvalidMnemonic = &KestrelError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// ErrInvalidPrivateKey indicates wrong length, format, or an
	// out-of-range curve scalar.
	ErrInvalidPrivateKey = &KestrelError{
		Code:     "INVALID_PRIVATE_KEY",
		Message:  "invalid private key",
		ExitCode: ExitInput,
	}

	// ErrWalletExists indicates a create/import over an occupied slot.
	ErrWalletExists = &KestrelError{
		Code:     "WALLET_EXISTS",
		Message:  "wallet already exists",
		ExitCode: ExitInput,
	}

	// ErrNoWallet indicates the operation requires a record that is absent.
	ErrNoWallet = &KestrelError{
		Code:     "NO_WALLET",
		Message:  "no wallet found",
		ExitCode: ExitNotFound,
	}

	// ErrDecryptionFailed covers wrong password, corrupted envelope, and
	// post-decrypt integrity check failure. One kind for all three so a
	// password-guessing caller cannot distinguish them.
	ErrDecryptionFailed = &KestrelError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong password or corrupted data",
		ExitCode: ExitAuth,
	}

	// ErrEncryptionFailed indicates an underlying cipher or KDF failure.
	ErrEncryptionFailed = &KestrelError{
		Code:     "ENCRYPTION_FAILED",
		Message:  "encryption failed",
		ExitCode: ExitGeneral,
	}

	// ErrAccessDenied indicates the storage substrate is unavailable.
	ErrAccessDenied = &KestrelError{
		Code:     "ACCESS_DENIED",
		Message:  "storage is not accessible",
		ExitCode: ExitPermission,
	}

	// ErrQuotaExceeded indicates a storage write exceeded the quota.
	ErrQuotaExceeded = &KestrelError{
		Code:     "QUOTA_EXCEEDED",
		Message:  "storage quota exceeded",
		ExitCode: ExitPermission,
	}

	// ErrInvalidData indicates malformed or inconsistent stored data.
	ErrInvalidData = &KestrelError{
		Code:     "INVALID_DATA",
		Message:  "invalid data",
		ExitCode: ExitInput,
	}

	// ErrGeneral is the fallback for unclassified failures.
	ErrGeneral = &KestrelError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}
)

// New creates a new KestrelError with the given code and message.
func New(code, message string) *KestrelError {
	return &KestrelError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context. The wrapped error keeps the
// code and exit code of the original KestrelError, if any.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ke *KestrelError
	if errors.As(err, &ke) {
		return &KestrelError{
			Code:       ke.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ke.Message),
			Details:    ke.Details,
			Suggestion: ke.Suggestion,
			Cause:      err,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KestrelError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ke *KestrelError
	if errors.As(err, &ke) {
		return &KestrelError{
			Code:       ke.Code,
			Message:    ke.Message,
			Details:    details,
			Suggestion: ke.Suggestion,
			Cause:      ke.Cause,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KestrelError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ke *KestrelError
	if errors.As(err, &ke) {
		return &KestrelError{
			Code:       ke.Code,
			Message:    ke.Message,
			Details:    ke.Details,
			Suggestion: suggestion,
			Cause:      ke.Cause,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KestrelError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ke *KestrelError
	if errors.As(err, &ke) {
		return ke.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ke *KestrelError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
