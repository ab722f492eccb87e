package http_test

import (
	"context"
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alan-mat/brave/internal/http"
)

func TestSessionGet(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if r.Method != gohttp.MethodGet {
			t.Errorf("expected GET, got '%s'", r.Method)
		}
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("expected q='golang', got '%s'", got)
		}
		if got := r.Header.Get("X-Subscription-Token"); got != "key" {
			t.Errorf("expected token header 'key', got '%s'", got)
		}
		w.WriteHeader(gohttp.StatusTeapot)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := http.NewSession()
	defer s.Close()

	header := gohttp.Header{}
	header.Set("X-Subscription-Token", "key")
	resp, err := s.Get(context.Background(), srv.URL+"/res/v1/web/search", url.Values{"q": {"golang"}}, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != gohttp.StatusTeapot {
		t.Errorf("expected status %d, got %d", gohttp.StatusTeapot, resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body '%s'", resp.Body)
	}
}

func TestSessionBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
	}))
	defer srv.Close()

	s := http.NewSession(http.WithMaxConns(2))
	defer s.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Get(context.Background(), srv.URL, nil, nil); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("expected at most 2 concurrent requests, got %d", got)
	}
}

func TestSessionTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	s := http.NewSession(http.WithTimeout(50 * time.Millisecond))
	defer s.Close()

	if _, err := s.Get(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	// the slot must be released after a timeout
	done := make(chan error, 1)
	go func() {
		_, err := s.Get(context.Background(), srv.URL, nil, nil)
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected timeout error on second call, got nil")
		}
	case <-time.After(time.Second):
		t.Error("second call blocked, slot was not released")
	}
}

func TestSessionClosed(t *testing.T) {
	s := http.NewSession()
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error on first close: %v", err)
	}

	_, err := s.Get(context.Background(), "http://127.0.0.1:1", nil, nil)
	if !errors.Is(err, http.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}

	if err := s.Close(); !errors.Is(err, http.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed on second close, got %v", err)
	}
}

func TestSessionDefaults(t *testing.T) {
	s := http.NewSession(http.WithMaxConns(0), http.WithTimeout(-1))
	defer s.Close()
	if s.MaxConns() != http.DefaultMaxConns {
		t.Errorf("expected %d max conns, got %d", http.DefaultMaxConns, s.MaxConns())
	}
}
