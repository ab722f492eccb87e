package tasks

import (
	"encoding/json"
	"time"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/transport"
	"github.com/hibiken/asynq"
)

const (
	TypeWebSearch = "brave:web_search"
	TypeSummarize = "brave:summarize"
)

const (
	MaxRetry = 5
	Timeout  = 2 * time.Minute
)

type searchTaskPayload struct {
	ID         string
	Request    brave.WebSearchRequest
	EntityInfo bool `json:",omitempty"`
}

// NewWebSearchTask returns a task running a web search. The id becomes both
// the asynq task id and the trace id.
func NewWebSearchTask(id string, req brave.WebSearchRequest) (*asynq.Task, error) {
	return newSearchTask(TypeWebSearch, searchTaskPayload{
		ID:      id,
		Request: req,
	})
}

// NewSummarizeTask returns a task running a web search followed by the
// summarizer lookup.
func NewSummarizeTask(id string, req brave.WebSearchRequest, entityInfo bool) (*asynq.Task, error) {
	return newSearchTask(TypeSummarize, searchTaskPayload{
		ID:         id,
		Request:    req,
		EntityInfo: entityInfo,
	})
}

func newSearchTask(typ string, p searchTaskPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typ, payload,
		asynq.TaskID(p.ID),
		asynq.MaxRetry(MaxRetry),
		asynq.Timeout(Timeout),
	), nil
}

// NewTrace builds the pending trace recorded when a task is enqueued.
func NewTrace(id, typ string, req brave.WebSearchRequest) *transport.SearchTrace {
	return &transport.SearchTrace{
		ID:        id,
		Status:    transport.TraceStatusPending,
		StartedAt: time.Now().UnixNano(),
		Query:     req.Query,
		Endpoint:  endpointName(typ),
	}
}

func endpointName(typ string) string {
	if typ == TypeSummarize {
		return brave.EndpointSummarizerSearch.Name
	}
	return brave.EndpointWebSearch.Name
}
