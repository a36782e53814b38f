// Package common defines shared constants and sentinel errors used across
// the server, the HTTP API and the CLI client. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Intake errors.
	ErrorUnsupportedType = errors.New("unsupported media type")
	ErrorTooLarge        = errors.New("file too large")
	ErrorBadExtension    = errors.New("extension not allowed")
	ErrorEmptyFile       = errors.New("empty file")

	// Session errors.
	ErrorSessionClosed = errors.New("session closed")

	// Processing errors.
	ErrorAlreadyProcessing = errors.New("already processing")
	ErrorInvalidSettings   = errors.New("invalid processing settings")
	ErrorNoResult          = errors.New("result bytes not available")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
