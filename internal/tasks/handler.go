package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/transport"
	"github.com/hibiken/asynq"
)

// Searcher is the part of *brave.Client used by the task handler.
type Searcher interface {
	WebSearch(ctx context.Context, req brave.WebSearchRequest) (*brave.WebSearchApiResponse, error)
	Summarize(ctx context.Context, req brave.WebSearchRequest, entityInfo bool) (*brave.SummarizerSearchApiResponse, error)
}

type TaskHandler struct {
	transport transport.Transport
	searcher  Searcher
}

func NewTaskHandler(transport transport.Transport, searcher Searcher) *TaskHandler {
	return &TaskHandler{
		transport: transport,
		searcher:  searcher,
	}
}

func (h TaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p searchTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid task payload: %v (%w)", err, asynq.SkipRetry)
	}
	if p.ID == "" {
		return fmt.Errorf("task payload without id (%w)", asynq.SkipRetry)
	}
	slog.Info("received search task", "id", p.ID, "type", t.Type(), "query", p.Request.Query)

	trace, err := h.transport.GetTrace(ctx, p.ID)
	if err != nil {
		trace = NewTrace(p.ID, t.Type(), p.Request)
	}
	trace.Status = transport.TraceStatusRunning
	trace.Error = ""
	h.setTrace(ctx, trace)

	var result any
	switch t.Type() {
	case TypeWebSearch:
		result, err = h.searcher.WebSearch(ctx, p.Request)
	case TypeSummarize:
		result, err = h.searcher.Summarize(ctx, p.Request, p.EntityInfo)
	default:
		err = fmt.Errorf("unrecognized task type '%s'", t.Type())
	}

	if err != nil {
		return h.fail(ctx, t, trace, err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return h.fail(ctx, t, trace, err)
	}
	if err := h.transport.SetResult(ctx, p.ID, body); err != nil {
		slog.Error("failed to store result", "id", p.ID, "err", err)
		return h.fail(ctx, t, trace, err)
	}

	trace.CompletedAt = time.Now().UnixNano()
	trace.Status = transport.TraceStatusCompleted
	h.setTrace(ctx, trace)

	slog.Info("search task finished", "id", p.ID, "bytes", len(body))
	return nil
}

// fail records err on the trace. Retryable errors are returned as is so that
// asynq schedules another attempt; everything else skips retry.
func (h TaskHandler) fail(ctx context.Context, t *asynq.Task, trace *transport.SearchTrace, err error) error {
	retry := Retryable(err)
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	final := !retry || !ok || retried >= maxRetry

	trace.Error = err.Error()
	if final {
		trace.Status = transport.TraceStatusFailed
		trace.CompletedAt = time.Now().UnixNano()
	} else {
		trace.Status = transport.TraceStatusPending
	}
	h.setTrace(ctx, trace)

	slog.Warn("search task failed", "id", trace.ID, "type", t.Type(), "retry", retry && !final, "err", err)
	if retry {
		return err
	}
	return fmt.Errorf("%s task failed: %w (%w)", t.Type(), err, asynq.SkipRetry)
}

func (h TaskHandler) setTrace(ctx context.Context, trace *transport.SearchTrace) {
	if err := h.transport.SetTrace(ctx, trace); err != nil {
		slog.Error("failed to set trace", "id", trace.ID, "err", err)
	}
}

// Retryable reports whether a failed search may succeed on a later attempt:
// rate limited or unavailable upstream responses and transport failures.
func Retryable(err error) bool {
	var apiErr *brave.ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var tErr *brave.TransportError
	if errors.As(err, &tErr) {
		return !errors.Is(err, brave.ErrClientClosed) && !errors.Is(err, context.Canceled)
	}
	return false
}

// RetryDelay backs off harder on 429 responses than asynq does by default.
func RetryDelay(n int, err error, t *asynq.Task) time.Duration {
	var apiErr *brave.ApiError
	if errors.As(err, &apiErr) && apiErr.Status == 429 {
		return time.Duration(math.Pow(2, float64(n))) * 5 * time.Second
	}
	return asynq.DefaultRetryDelayFunc(n, err, t)
}
