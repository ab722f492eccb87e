package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alan-mat/brave"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *brave.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := brave.New(
		brave.WithApiKey("key"),
		brave.WithApiHost(srv.URL),
		brave.WithRequestsPerSecond(100),
		brave.WithMaxConcurrentRequests(4),
		brave.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSearchCmdRequest(t *testing.T) {
	cmd := searchCmd{Count: 5, Country: "DE", ExtraSnippets: true}
	req := cmd.request("golang")
	if req.Query != "golang" || *req.Count != 5 || req.Country != "DE" || !*req.ExtraSnippets {
		t.Errorf("unexpected request '%+v'", req)
	}
	if req.Offset != nil || req.Summary != nil {
		t.Errorf("unset flags must stay nil, got '%+v'", req)
	}
}

func TestSearchCmdOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		io.WriteString(w, `{"type":"search","query":{"original":"`+q+`"},"web":{"type":"search","results":[{"title":"`+q+` result","url":"https://example.com/`+q+`"}]}}`)
	})

	cmd := searchCmd{Queries: []string{"alpha", "beta", "gamma"}}
	results, err := cmd.search(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, q := range cmd.Queries {
		if results[i].Query != q || results[i].Response.Query.Original != q {
			t.Errorf("expected result %d for '%s', got '%+v'", i, q, results[i])
		}
	}

	var buf bytes.Buffer
	printResults(&buf, results[0])
	if !strings.Contains(buf.String(), "1. alpha result") || !strings.Contains(buf.String(), "https://example.com/alpha") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestSearchCmdFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad" {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"type":"ErrorResponse"}`)
			return
		}
		io.WriteString(w, `{"type":"search"}`)
	})

	cmd := searchCmd{Queries: []string{"good", "bad"}}
	_, err := cmd.search(context.Background(), c)
	var apiErr *brave.ApiError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected api error 429, got %v", err)
	}
}

func TestPrintResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, searchResult{Query: "x", Response: &brave.WebSearchApiResponse{Type: "search"}})
	if !strings.Contains(buf.String(), "no results") {
		t.Errorf("expected 'no results', got '%s'", buf.String())
	}
}
