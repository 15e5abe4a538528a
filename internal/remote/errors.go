package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// ErrNetworkUnreachable is returned when a request never reached the service:
// dial failures, DNS failures, resets and timeouts. Callers fall back to the
// offline queue only on this error.
var ErrNetworkUnreachable = model.ErrNetworkUnreachable

// APIError is a response from the service with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnreachable reports whether err means the service could not be reached.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrNetworkUnreachable)
}

// classify marks transport failures with ErrNetworkUnreachable. A cancelled
// context is the caller's decision and is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", ErrNetworkUnreachable, err)
	}
	return err
}
