// Package httperr classifies HTTP failures of AI provider calls into domain
// errors. Timeouts, 429 and 5xx responses are transient and get retried.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// maxBody bounds the response text carried in an error.
const maxBody = 512

// FromStatus builds the error for a non-2xx response.
// class is the service's unavailability sentinel.
func FromStatus(service string, class error, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBody {
		msg = msg[:maxBody] + "..."
	}
	if IsTransientStatus(status) {
		return fmt.Errorf("%s: %w: %w: status %d: %s", service, class, domain.ErrTransient, status, msg)
	}
	return fmt.Errorf("%s: %w: status %d: %s", service, class, status, msg)
}

// FromTransport builds the error for a request that got no response.
// Context cancellation is passed through unclassified.
func FromTransport(service string, class error, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", service, err)
	}
	if IsTimeout(err) {
		return fmt.Errorf("%s: %w: %w: %w", service, class, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w: %w", service, class, err)
}

// IsTransientStatus reports whether a status code is worth retrying.
func IsTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
