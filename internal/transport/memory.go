package transport

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTransport keeps traces and results in process memory. It is meant for
// tests and single-process use.
type MemoryTransport struct {
	mu      sync.RWMutex
	traces  map[string]SearchTrace
	results map[string][]byte
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		traces:  make(map[string]SearchTrace),
		results: make(map[string][]byte),
	}
}

func (t *MemoryTransport) SetTrace(ctx context.Context, trace *SearchTrace) error {
	if trace == nil || trace.ID == "" {
		return fmt.Errorf("invalid trace ID")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.traces[trace.ID] = *trace
	return nil
}

func (t *MemoryTransport) GetTrace(ctx context.Context, traceId string) (*SearchTrace, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	trace, ok := t.traces[traceId]
	if !ok {
		return nil, fmt.Errorf("trace '%s': %w", traceId, ErrNotFound)
	}
	return &trace, nil
}

func (t *MemoryTransport) SetResult(ctx context.Context, traceId string, result []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[traceId] = append([]byte(nil), result...)
	return nil
}

func (t *MemoryTransport) GetResult(ctx context.Context, traceId string) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.results[traceId]
	if !ok {
		return nil, fmt.Errorf("result '%s': %w", traceId, ErrNotFound)
	}
	return b, nil
}
