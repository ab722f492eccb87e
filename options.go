package brave

import (
	"log/slog"
	gohttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultMaxConcurrentRequests = 1
	DefaultRequestsPerSecond     = 1
	DefaultTimeout               = 20 * time.Second
)

type Option func(*Client)

// WithApiKey sets the subscription token. Without it the key is read from the
// BRAVE_API_KEY environment variable.
func WithApiKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithApiHost(host string) Option {
	return func(c *Client) {
		c.apiHost = host
	}
}

// WithMaxConcurrentRequests bounds the number of in-flight requests and pooled
// connections.
func WithMaxConcurrentRequests(n int) Option {
	return func(c *Client) {
		c.maxConcurrent = n
	}
}

func WithRequestsPerSecond(n int) Option {
	return func(c *Client) {
		c.requestsPerSecond = n
	}
}

// WithTimeout sets the per-call timeout of the HTTP phase.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetricsRegisterer registers the client metrics on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithRoundTripper replaces the pooled HTTP transport of the session.
func WithRoundTripper(rt gohttp.RoundTripper) Option {
	return func(c *Client) {
		c.roundTripper = rt
	}
}
