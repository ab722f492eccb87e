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

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/tasks"
	"github.com/alan-mat/brave/internal/transport"
)

type searchRequest struct {
	brave.WebSearchRequest

	Summarize  bool `json:"summarize,omitempty"`
	EntityInfo bool `json:"entity_info,omitempty"`
}

type taskResponse struct {
	ID     string                 `json:"id"`
	Status transport.TraceStatus  `json:"status"`
	Trace  *transport.SearchTrace `json:"trace,omitempty"`
	Result json.RawMessage        `json:"result,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		var vErr *brave.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": vErr.Reason, "field": vErr.Field})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	slog.Debug("received search request", "query", req.Query, "summarize", req.Summarize)

	id := uuid.NewString()
	typ := tasks.TypeWebSearch
	var (
		t   *asynq.Task
		err error
	)
	if req.Summarize {
		typ = tasks.TypeSummarize
		t, err = tasks.NewSummarizeTask(id, req.WebSearchRequest, req.EntityInfo)
	} else {
		t, err = tasks.NewWebSearchTask(id, req.WebSearchRequest)
	}
	if err != nil {
		slog.Error("failed to create task", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	trace := tasks.NewTrace(id, typ, req.WebSearchRequest)
	if err := s.transport.SetTrace(r.Context(), trace); err != nil {
		slog.Error("failed to set trace", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	info, err := s.enqueuer.EnqueueContext(r.Context(), t)
	if err != nil {
		slog.Error("failed to enqueue task", "id", id, "err", err)
		trace.Status = transport.TraceStatusFailed
		trace.Error = "failed to enqueue task"
		_ = s.transport.SetTrace(r.Context(), trace)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "failed to enqueue task"})
		return
	}
	slog.Info("enqueued task successfully", "id", info.ID, "type", typ)

	w.Header().Set("Location", "/v1/tasks/"+id)
	writeJSON(w, http.StatusAccepted, taskResponse{ID: id, Status: trace.Status})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid id"})
		return
	}

	trace, err := s.transport.GetTrace(r.Context(), id)
	if errors.Is(err, transport.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "task not found"})
		return
	}
	if err != nil {
		slog.Error("failed to get trace", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	resp := taskResponse{ID: id, Status: trace.Status, Trace: trace}
	if trace.Status == transport.TraceStatusCompleted {
		result, err := s.transport.GetResult(r.Context(), id)
		if err != nil {
			slog.Warn("trace completed without result", "id", id, "err", err)
		} else {
			resp.Result = result
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, val any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(val)
}
