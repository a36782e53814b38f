package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/netx"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrGone         = errors.New("no longer available")
)

// classify tags a *netx.StatusError with the matching sentinel so callers can
// use errors.Is.
func classify(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, se)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", ErrConflict, se)
	case http.StatusGone:
		return fmt.Errorf("%w: %w", ErrGone, se)
	default:
		return se
	}
}
