package worker_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/tasks"
	"github.com/alan-mat/brave/internal/transport"
	"github.com/alan-mat/brave/worker"
)

func TestServeMux(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/res/v1/web/search":
			io.WriteString(w, `{"type":"search","summarizer":{"type":"summarizer","key":"abc"}}`)
		case "/res/v1/summarizer/search":
			io.WriteString(w, `{"type":"summarizer","status":"complete","summary":[{"type":"token","data":"Go"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := brave.New(
		brave.WithApiKey("key"),
		brave.WithApiHost(srv.URL),
		brave.WithRequestsPerSecond(100),
		brave.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	tr := transport.NewMemoryTransport()
	mux := worker.NewServeMux(tasks.NewTaskHandler(tr, c))

	web, _ := tasks.NewWebSearchTask("id-web", brave.WebSearchRequest{Query: "golang"})
	sum, _ := tasks.NewSummarizeTask("id-sum", brave.WebSearchRequest{Query: "golang"}, false)
	for _, task := range []*asynq.Task{web, sum} {
		if err := mux.ProcessTask(context.Background(), task); err != nil {
			t.Errorf("task '%s' failed: %v", task.Type(), err)
		}
	}

	for _, id := range []string{"id-web", "id-sum"} {
		trace, err := tr.GetTrace(context.Background(), id)
		if err != nil {
			t.Fatalf("missing trace '%s': %v", id, err)
		}
		if trace.Status != transport.TraceStatusCompleted {
			t.Errorf("expected '%s' to be completed, got '%s' (%s)", id, trace.Status, trace.Error)
		}
	}

	if err := mux.ProcessTask(context.Background(), asynq.NewTask("brave:unknown", nil)); err == nil {
		t.Error("expected error for unregistered task type")
	}
}
