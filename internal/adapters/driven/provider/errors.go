// Package provider classifies failures of remote model providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// RetryableStatus reports whether an HTTP status is worth retrying:
// rate limits, request timeouts and server-side failures.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// Error wraps err as a ProviderError. status is the HTTP status when one
// was received, or 0. An error that is already a ProviderError is returned as is.
func Error(name, op string, status int, err error) error {
	if err == nil {
		return nil
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.ProviderError{
		Provider:  name,
		Op:        op,
		Retryable: RetryableStatus(status) || transient(err),
		Err:       err,
	}
}

// StatusError builds the ProviderError for a non-2xx response.
func StatusError(name, op string, status int, body string) error {
	return Error(name, op, status, fmt.Errorf("status %d: %s", status, body))
}

// transient reports network-level failures that may succeed on retry.
// Cancellation by the caller is never transient.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
