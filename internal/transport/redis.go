package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	traceKeyPrefix  = "brave:trace:"
	resultKeyPrefix = "brave:result:"
)

type RedisTransport struct {
	rdb *redis.Client
}

func NewRedisTransport(rdb *redis.Client) *RedisTransport {
	return &RedisTransport{
		rdb: rdb,
	}
}

func (t *RedisTransport) SetTrace(ctx context.Context, trace *SearchTrace) error {
	if trace == nil || trace.ID == "" {
		return fmt.Errorf("invalid trace ID")
	}
	key := traceKeyPrefix + trace.ID

	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"id", trace.ID,
			"status", int(trace.Status),
			"started_at", trace.StartedAt,
			"completed_at", trace.CompletedAt,
			"query", trace.Query,
			"endpoint", trace.Endpoint,
			"error", trace.Error,
		)
		pipe.Expire(ctx, key, TraceExpiry)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store trace '%s': %w", trace.ID, err)
	}
	return nil
}

func (t *RedisTransport) GetTrace(ctx context.Context, traceId string) (*SearchTrace, error) {
	res := t.rdb.HGetAll(ctx, traceKeyPrefix+traceId)
	vals, err := res.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trace '%s': %w", traceId, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("trace '%s': %w", traceId, ErrNotFound)
	}

	var trace SearchTrace
	if err := res.Scan(&trace); err != nil {
		return nil, fmt.Errorf("failed to scan trace '%s': %w", traceId, err)
	}
	return &trace, nil
}

func (t *RedisTransport) SetResult(ctx context.Context, traceId string, result []byte) error {
	if err := t.rdb.Set(ctx, resultKeyPrefix+traceId, result, ResultExpiry).Err(); err != nil {
		return fmt.Errorf("failed to store result '%s': %w", traceId, err)
	}
	return nil
}

func (t *RedisTransport) GetResult(ctx context.Context, traceId string) ([]byte, error) {
	b, err := t.rdb.Get(ctx, resultKeyPrefix+traceId).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("result '%s': %w", traceId, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result '%s': %w", traceId, err)
	}
	return b, nil
}
