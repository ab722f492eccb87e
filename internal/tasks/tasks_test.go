package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/tasks"
	"github.com/alan-mat/brave/internal/transport"
	"github.com/hibiken/asynq"
)

type mockSearcher struct {
	err      error
	web      *brave.WebSearchApiResponse
	summary  *brave.SummarizerSearchApiResponse
	calls    int
	lastReq  brave.WebSearchRequest
	lastInfo bool
}

func (s *mockSearcher) WebSearch(ctx context.Context, req brave.WebSearchRequest) (*brave.WebSearchApiResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.web, nil
}

func (s *mockSearcher) Summarize(ctx context.Context, req brave.WebSearchRequest, entityInfo bool) (*brave.SummarizerSearchApiResponse, error) {
	s.calls++
	s.lastReq = req
	s.lastInfo = entityInfo
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func TestNewTasks(t *testing.T) {
	task, err := tasks.NewWebSearchTask("id-1", brave.WebSearchRequest{Query: "golang", Count: brave.Int(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != tasks.TypeWebSearch {
		t.Errorf("expected type '%s', got '%s'", tasks.TypeWebSearch, task.Type())
	}

	var p struct {
		ID      string
		Request brave.WebSearchRequest
	}
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if p.ID != "id-1" || p.Request.Query != "golang" || *p.Request.Count != 5 {
		t.Errorf("unexpected payload '%s'", task.Payload())
	}

	task, err = tasks.NewSummarizeTask("id-2", brave.WebSearchRequest{Query: "golang"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != tasks.TypeSummarize {
		t.Errorf("expected type '%s', got '%s'", tasks.TypeSummarize, task.Type())
	}

	trace := tasks.NewTrace("id-2", tasks.TypeSummarize, brave.WebSearchRequest{Query: "golang"})
	if trace.Status != transport.TraceStatusPending || trace.Endpoint != "summarizer" || trace.Query != "golang" {
		t.Errorf("unexpected trace '%+v'", *trace)
	}
}

func TestProcessWebSearch(t *testing.T) {
	tr := transport.NewMemoryTransport()
	searcher := &mockSearcher{web: &brave.WebSearchApiResponse{Type: "search"}}
	h := tasks.NewTaskHandler(tr, searcher)

	task, _ := tasks.NewWebSearchTask("id-1", brave.WebSearchRequest{Query: "golang"})
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trace, err := tr.GetTrace(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("trace not stored: %v", err)
	}
	if trace.Status != transport.TraceStatusCompleted {
		t.Errorf("expected completed trace, got '%s'", trace.Status)
	}
	if trace.CompletedAt == 0 || trace.Endpoint != "web" {
		t.Errorf("unexpected trace '%+v'", *trace)
	}

	result, err := tr.GetResult(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("result not stored: %v", err)
	}
	var resp brave.WebSearchApiResponse
	if err := json.Unmarshal(result, &resp); err != nil || resp.Type != "search" {
		t.Errorf("unexpected result '%s' (%v)", result, err)
	}
}

func TestProcessSummarize(t *testing.T) {
	tr := transport.NewMemoryTransport()
	searcher := &mockSearcher{summary: &brave.SummarizerSearchApiResponse{Type: "summarizer"}}
	h := tasks.NewTaskHandler(tr, searcher)

	task, _ := tasks.NewSummarizeTask("id-1", brave.WebSearchRequest{Query: "golang"}, true)
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !searcher.lastInfo {
		t.Error("expected entity info to be passed to Summarize")
	}
	trace, _ := tr.GetTrace(context.Background(), "id-1")
	if trace == nil || trace.Status != transport.TraceStatusCompleted {
		t.Errorf("expected completed trace, got %+v", trace)
	}
}

func TestProcessTaskFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"rate limited", &brave.ApiError{Endpoint: "web", Status: 429}, false},
		{"unavailable", &brave.ApiError{Endpoint: "web", Status: 503}, false},
		{"transport", &brave.TransportError{Endpoint: "web", Op: "get", Err: errors.New("connection reset")}, false},
		{"unauthorized", &brave.ApiError{Endpoint: "web", Status: 401}, true},
		{"validation", &brave.ValidationError{Field: "q", Reason: "must not be empty"}, true},
		{"decode", &brave.DecodeError{Endpoint: "web", Err: brave.ErrMissingDiscriminant}, true},
		{"closed", &brave.TransportError{Endpoint: "web", Op: "get", Err: brave.ErrClientClosed}, true},
		{"no summary", brave.ErrSummaryUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transport.NewMemoryTransport()
			h := tasks.NewTaskHandler(tr, &mockSearcher{err: tt.err})

			task, _ := tasks.NewWebSearchTask("id-1", brave.WebSearchRequest{Query: "golang"})
			err := h.ProcessTask(context.Background(), task)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected error to wrap '%v', got '%v'", tt.err, err)
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tt.skipRetry {
				t.Errorf("expected skip retry %v, got %v", tt.skipRetry, got)
			}

			// outside a worker there is no retry budget left
			trace, _ := tr.GetTrace(context.Background(), "id-1")
			if trace == nil || trace.Status != transport.TraceStatusFailed || trace.Error == "" {
				t.Errorf("expected failed trace with error, got %+v", trace)
			}
			if _, err := tr.GetResult(context.Background(), "id-1"); !errors.Is(err, transport.ErrNotFound) {
				t.Errorf("expected no result, got %v", err)
			}
		})
	}
}

func TestProcessInvalidTask(t *testing.T) {
	h := tasks.NewTaskHandler(transport.NewMemoryTransport(), &mockSearcher{})

	if err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeWebSearch, []byte("{"))); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected skip retry for invalid payload, got %v", err)
	}
	if err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeWebSearch, []byte("{}"))); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected skip retry for missing id, got %v", err)
	}
	if err := h.ProcessTask(context.Background(), asynq.NewTask("brave:unknown", []byte(`{"ID":"x"}`))); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected skip retry for unknown type, got %v", err)
	}
}

func TestProcessWithClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("expected q 'golang', got '%s'", r.URL.Query().Get("q"))
		}
		io.WriteString(w, `{"type":"search","query":{"original":"golang"}}`)
	}))
	defer srv.Close()

	c, err := brave.New(
		brave.WithApiKey("key"),
		brave.WithApiHost(srv.URL),
		brave.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	tr := transport.NewMemoryTransport()
	h := tasks.NewTaskHandler(tr, c)
	task, _ := tasks.NewWebSearchTask("id-1", brave.WebSearchRequest{Query: "golang"})
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, _ := tr.GetResult(context.Background(), "id-1")
	var resp brave.WebSearchApiResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		t.Fatalf("invalid result: %v", err)
	}
	if resp.Query == nil || resp.Query.Original != "golang" {
		t.Errorf("unexpected result '%s'", result)
	}
}

func TestRetryDelay(t *testing.T) {
	task := asynq.NewTask(tasks.TypeWebSearch, nil)
	rateLimited := &brave.ApiError{Status: 429}
	if got := tasks.RetryDelay(1, rateLimited, task); got != 10*time.Second {
		t.Errorf("expected 10s, got %v", got)
	}
	if got := tasks.RetryDelay(3, rateLimited, task); got != 40*time.Second {
		t.Errorf("expected 40s, got %v", got)
	}
	if got := tasks.RetryDelay(1, errors.New("other"), task); got <= 0 {
		t.Errorf("expected positive default delay, got %v", got)
	}
}
