package brave

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrMissingApiKey       = errors.New("no api key provided, set BRAVE_API_KEY or use WithApiKey")
	ErrClientClosed        = errors.New("client is closed")
	ErrMissingDiscriminant = errors.New("response is missing the 'type' discriminant")
	ErrSummaryUnavailable  = errors.New("web search response carries no summarizer key")
)

// maxErrorBody bounds how much of a payload is echoed in error messages.
const maxErrorBody = 512

// ConfigurationError is returned by New when the client cannot be built.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("brave: invalid configuration '%s': %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request that failed validation. No rate limiter
// token is consumed for such a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("brave: invalid request field '%s': %s", e.Field, e.Reason)
}

// ApiError is returned when the server answers with a status other than 200.
// Data holds the decoded JSON object when the body is one, Raw always holds
// the body as received.
type ApiError struct {
	Endpoint string
	Status   int
	Data     map[string]any
	Raw      []byte
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("brave: %s failed (HTTP Error %d) %s", e.Endpoint, e.Status, truncate(e.Raw))
}

// Temporary reports whether the failure is worth retrying at a higher layer.
func (e *ApiError) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// TransportError is returned when no server response was obtained: timeouts,
// connection failures, cancelled admission or a closed client.
type TransportError struct {
	Endpoint string
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("brave: %s %s: %v", e.Endpoint, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by the per-call timeout.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// DecodeError is returned for a 200 response whose body does not match the
// shape declared by the endpoint.
type DecodeError struct {
	Endpoint string
	Body     []byte
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("brave: failed to decode %s response: %v: %s", e.Endpoint, e.Err, truncate(e.Body))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody])
	}
	return string(b)
}
