package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/alan-mat/brave"
	"github.com/alan-mat/brave/internal/config"
	"github.com/alan-mat/brave/internal/metrics"
	"github.com/alan-mat/brave/internal/tasks"
	"github.com/alan-mat/brave/internal/transport"
)

type Worker struct {
	conf   *config.Config
	logger *slog.Logger

	rdb         *redis.Client
	asynqServer *asynq.Server
	metricsSrv  *http.Server

	transport transport.Transport
	client    *brave.Client
}

func New(conf *config.Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		conf:   conf,
		logger: logger,
	}
}

// NewServeMux routes the search task types to h.
func NewServeMux(h *tasks.TaskHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeWebSearch, h)
	mux.Handle(tasks.TypeSummarize, h)
	return mux
}

// Start runs the worker until it receives SIGINT or SIGTERM. The brave client
// is shared by all task goroutines, so its rate limit applies to the whole
// worker process.
func (w *Worker) Start() error {
	reg := prometheus.NewRegistry()
	opts := append(w.conf.Client.ClientOptions(),
		brave.WithLogger(w.logger),
		brave.WithMetricsRegisterer(reg),
	)
	client, err := brave.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize brave client: %w", err)
	}
	w.client = client
	defer w.client.Close()

	w.rdb = redis.NewClient(w.conf.Redis.Options())
	defer w.rdb.Close()

	w.asynqServer = asynq.NewServerFromRedisClient(
		w.rdb,
		asynq.Config{
			Concurrency:    w.conf.Worker.Concurrency,
			RetryDelayFunc: tasks.RetryDelay,
		},
	)

	w.transport = transport.NewRedisTransport(w.rdb)

	if w.conf.Worker.MetricsAddr != "" {
		w.startMetrics(reg)
		defer w.stopMetrics()
	}

	mux := NewServeMux(tasks.NewTaskHandler(w.transport, w.client))

	w.logger.Info("worker starting", "concurrency", w.conf.Worker.Concurrency, "redis", w.conf.Redis.Addr)
	if err := w.asynqServer.Run(mux); err != nil {
		return err
	}
	return nil
}

func (w *Worker) startMetrics(g prometheus.Gatherer) {
	r := chi.NewRouter()
	r.Mount("/metrics", metrics.Handler(g))

	w.metricsSrv = &http.Server{
		Addr:              w.conf.Worker.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		w.logger.Info("metrics listening", "addr", w.metricsSrv.Addr)
		if err := w.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("metrics server failed", "err", err)
		}
	}()
}

func (w *Worker) stopMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = w.metricsSrv.Shutdown(ctx)
}
