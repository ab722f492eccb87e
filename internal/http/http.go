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

package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	DefaultTimeout  = 20 * time.Second
	DefaultMaxConns = 1

	idleConnTimeout = 90 * time.Second
)

var ErrSessionClosed = errors.New("session is closed")

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     gohttp.Header
	Body       []byte
}

// Session is a pool of reusable connections to a single API host. At most
// maxConns requests are in flight at any time, later callers wait for a free
// slot in arrival order.
type Session struct {
	httpClient *gohttp.Client
	transport  gohttp.RoundTripper
	slots      *semaphore.Weighted

	maxConns int
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
}

type SessionOption func(*Session)

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		maxConns: DefaultMaxConns,
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		s.transport = &gohttp.Transport{
			Proxy:               gohttp.ProxyFromEnvironment,
			MaxConnsPerHost:     s.maxConns,
			MaxIdleConnsPerHost: s.maxConns,
			IdleConnTimeout:     idleConnTimeout,
		}
	}
	s.httpClient = &gohttp.Client{
		Transport: s.transport,
		Timeout:   s.timeout,
	}
	s.slots = semaphore.NewWeighted(int64(s.maxConns))

	return s
}

func WithTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithMaxConns(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithRoundTripper replaces the pooled transport, mostly useful in tests.
func WithRoundTripper(rt gohttp.RoundTripper) SessionOption {
	return func(s *Session) {
		s.transport = rt
	}
}

// Get issues a GET request to rawURL with the given query parameters and
// headers. Any status code is returned as a Response; only failures to obtain
// a response are returned as errors.
func (s *Session) Get(ctx context.Context, rawURL string, params url.Values, header gohttp.Header) (*Response, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrSessionClosed
	}

	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		uri.RawQuery = params.Encode()
	}

	req, err := gohttp.NewRequestWithContext(ctx, gohttp.MethodGet, uri.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.slots.Release(1)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Close releases pooled connections. Requests started after Close fail with
// ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *Session) MaxConns() int {
	return s.maxConns
}
