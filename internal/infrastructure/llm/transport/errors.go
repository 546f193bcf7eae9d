package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/resilience"
)

// StatusError is a non-2xx answer from a backend that was reachable.
type StatusError struct {
	Backend    string
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("%s %s status: %s", e.Backend, e.Operation, e.Status)
	}
	return fmt.Sprintf("%s %s status: %s: %s", e.Backend, e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// Classify never asks for a retry. It only decides what the circuit breaker
// counts as a failure.
func Classify(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{RecordFailure: isServerSideStatus(statusErr.StatusCode)}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// IsTransportFailure reports whether err means the backend could not be reached.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if resilience.IsCircuitOpen(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func wrapConnectivityIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrConnectivity) || !IsTransportFailure(err) {
		return err
	}
	return domain.WrapError(domain.ErrConnectivity, operation, err)
}

func isServerSideStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
