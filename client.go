// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

// Package brave is a client for the Brave Search API.
//
// A Client owns a pooled HTTP session, created on first use, and a rate
// limiter shared by all of its calls. Every failed call returns one of
// *ValidationError, *ApiError, *TransportError or *DecodeError:
//
//	c, err := brave.New(brave.WithApiKey(key))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	resp, err := c.WebSearch(ctx, brave.WebSearchRequest{Query: "golang"})
package brave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gohttp "net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alan-mat/brave/internal/http"
	"github.com/alan-mat/brave/internal/metrics"
	"github.com/alan-mat/brave/internal/query"
	"github.com/alan-mat/brave/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
)

type Client struct {
	apiKey            string
	apiHost           string
	maxConcurrent     int
	requestsPerSecond int
	timeout           time.Duration

	logger       *slog.Logger
	registerer   prometheus.Registerer
	roundTripper gohttp.RoundTripper

	limiter *ratelimit.Limiter
	metrics *metrics.Metrics

	mu      sync.Mutex
	session *http.Session
	closed  bool
}

// New builds a client. The api key is taken from WithApiKey or, when unset,
// from the BRAVE_API_KEY environment variable; a missing key is a
// *ConfigurationError.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		apiHost:           DefaultApiHost,
		maxConcurrent:     DefaultMaxConcurrentRequests,
		requestsPerSecond: DefaultRequestsPerSecond,
		timeout:           DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = strings.TrimSpace(os.Getenv(ApiKeyEnv))
	}
	if c.apiKey == "" {
		return nil, &ConfigurationError{Option: "api_key", Err: ErrMissingApiKey}
	}

	u, err := url.Parse(c.apiHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigurationError{Option: "api_host", Err: fmt.Errorf("invalid host '%s'", c.apiHost)}
	}
	if c.maxConcurrent <= 0 {
		return nil, &ConfigurationError{Option: "max_concurrent_requests", Err: errors.New("must be positive")}
	}
	if c.requestsPerSecond <= 0 {
		return nil, &ConfigurationError{Option: "requests_per_second", Err: errors.New("must be positive")}
	}
	if c.timeout <= 0 {
		return nil, &ConfigurationError{Option: "timeout", Err: errors.New("must be positive")}
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.limiter = ratelimit.New(c.requestsPerSecond, time.Second)
	c.metrics = metrics.New(c.registerer)

	return c, nil
}

// Open creates a client, passes it to fn and closes it on every exit path of
// fn, including panics.
func Open(fn func(*Client) error, opts ...Option) (err error) {
	c, err := New(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(c)
}

// Close releases the pooled connections. It is safe to call more than once;
// calls issued after Close fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

func (c *Client) WebSearch(ctx context.Context, req WebSearchRequest) (*WebSearchApiResponse, error) {
	return Do[WebSearchApiResponse](ctx, c, EndpointWebSearch, req)
}

func (c *Client) SummarizerSearch(ctx context.Context, req SummarizerSearchRequest) (*SummarizerSearchApiResponse, error) {
	return Do[SummarizerSearchApiResponse](ctx, c, EndpointSummarizerSearch, req)
}

// Summarize runs a web search with summary enabled and fetches the summary it
// references. It returns ErrSummaryUnavailable when the search response has no
// summarizer key.
func (c *Client) Summarize(ctx context.Context, req WebSearchRequest, entityInfo bool) (*SummarizerSearchApiResponse, error) {
	req.Summary = Bool(true)
	web, err := c.WebSearch(ctx, req)
	if err != nil {
		return nil, err
	}
	if web.Summarizer == nil || web.Summarizer.Key == "" {
		return nil, ErrSummaryUnavailable
	}

	sreq := SummarizerSearchRequest{Key: web.Summarizer.Key}
	if entityInfo {
		sreq.EntityInfo = Bool(true)
	}
	return c.SummarizerSearch(ctx, sreq)
}

// Do executes req against ep and decodes the result into T. It validates the
// request, waits for a rate limiter token and a free connection slot, then
// issues a single GET. Nothing is retried.
func Do[T any](ctx context.Context, c *Client, ep Endpoint, req Request) (*T, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Reason: "must not be nil"}
	}
	if err := req.Validate(); err != nil {
		c.metrics.ObserveRequest(ep.Name, metrics.OutcomeValidation, 0, 0)
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}

	session, err := c.ensure()
	if err != nil {
		c.metrics.ObserveRequest(ep.Name, metrics.OutcomeTransport, 0, 0)
		return nil, &TransportError{Endpoint: ep.Name, Op: "open session", Err: err}
	}

	waitStart := time.Now()
	if err := c.limiter.Acquire(ctx); err != nil {
		c.metrics.ObserveRequest(ep.Name, metrics.OutcomeTransport, 0, 0)
		return nil, &TransportError{Endpoint: ep.Name, Op: "acquire", Err: err}
	}
	c.metrics.ObserveAdmission(time.Since(waitStart))

	params := query.Encode(req)
	c.logger.Debug("brave.request", "endpoint", ep.Name, "path", ep.Path, "params", params)

	start := time.Now()
	resp, err := session.Get(ctx, c.endpointURL(ep), params.Values(), c.header(ep))
	if err != nil {
		if errors.Is(err, http.ErrSessionClosed) {
			err = ErrClientClosed
		}
		c.metrics.ObserveRequest(ep.Name, metrics.OutcomeTransport, 0, 0)
		c.logger.Debug("brave.transport_error", "endpoint", ep.Name, "error", err)
		return nil, &TransportError{Endpoint: ep.Name, Op: "get", Err: err}
	}
	elapsed := time.Since(start)
	c.logger.Debug("brave.response",
		"endpoint", ep.Name,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"elapsed", elapsed,
	)

	out, err := decodeResponse[T](ep, resp.StatusCode, resp.Body)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			c.logger.Warn("failed to decode response", "endpoint", ep.Name, "error", decErr.Err, "payload", string(decErr.Body))
			c.metrics.ObserveRequest(ep.Name, metrics.OutcomeDecode, resp.StatusCode, elapsed)
		} else {
			c.metrics.ObserveRequest(ep.Name, metrics.OutcomeAPI, resp.StatusCode, elapsed)
		}
		return nil, err
	}

	c.metrics.ObserveRequest(ep.Name, metrics.OutcomeOK, resp.StatusCode, elapsed)
	return out, nil
}

// ensure returns the client session, creating it on first use. Concurrent
// first calls construct exactly one session.
func (c *Client) ensure() (*http.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.session != nil {
		return c.session, nil
	}

	opts := []http.SessionOption{
		http.WithTimeout(c.timeout),
		http.WithMaxConns(c.maxConcurrent),
	}
	if c.roundTripper != nil {
		opts = append(opts, http.WithRoundTripper(c.roundTripper))
	}
	c.session = http.NewSession(opts...)
	c.metrics.SessionsCreated.Inc()
	c.logger.Debug("created session", "host", c.apiHost, "max_conns", c.maxConcurrent, "timeout", c.timeout)

	return c.session, nil
}

func (c *Client) endpointURL(ep Endpoint) string {
	return strings.TrimRight(c.apiHost, "/") + "/" + strings.TrimLeft(ep.Path, "/")
}

func (c *Client) header(ep Endpoint) gohttp.Header {
	h := make(gohttp.Header, 3)
	h.Set("Accept", "application/json")
	h.Set(headerSubscriptionToken, c.apiKey)
	if ep.APIVersion != "" {
		h.Set(headerApiVersion, ep.APIVersion)
	}
	return h
}
