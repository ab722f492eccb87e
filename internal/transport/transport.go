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

// Package transport stores the state of asynchronous search tasks so that the
// API server can report on work done by the worker.
package transport

import (
	"context"
	"errors"
	"time"
)

var (
	TraceExpiry  = time.Hour * 24
	ResultExpiry = time.Hour * 24

	ErrNotFound = errors.New("not found")
)

type Transport interface {
	SetTrace(ctx context.Context, trace *SearchTrace) error
	GetTrace(ctx context.Context, traceId string) (*SearchTrace, error)

	// SetResult stores the JSON encoded response of a finished task.
	SetResult(ctx context.Context, traceId string, result []byte) error
	GetResult(ctx context.Context, traceId string) ([]byte, error)
}

type SearchTrace struct {
	ID          string      `redis:"id" json:"id"`
	Status      TraceStatus `redis:"status" json:"status"`
	StartedAt   int64       `redis:"started_at" json:"started_at"`
	CompletedAt int64       `redis:"completed_at" json:"completed_at,omitempty"`
	Query       string      `redis:"query" json:"query"`
	Endpoint    string      `redis:"endpoint" json:"endpoint"`
	Error       string      `redis:"error" json:"error,omitempty"`
}

type TraceStatus int

const (
	TraceStatusUnspecified TraceStatus = iota
	TraceStatusPending
	TraceStatusRunning
	TraceStatusCompleted
	TraceStatusFailed
)

func (s TraceStatus) String() string {
	switch s {
	case TraceStatusPending:
		return "pending"
	case TraceStatusRunning:
		return "running"
	case TraceStatusCompleted:
		return "completed"
	case TraceStatusFailed:
		return "failed"
	default:
		return "unspecified"
	}
}

func (s TraceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Done reports whether the trace reached a terminal status.
func (s TraceStatus) Done() bool {
	return s == TraceStatusCompleted || s == TraceStatusFailed
}
