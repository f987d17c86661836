package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sagittarian/workqueue/api/httpapi"
	"github.com/sagittarian/workqueue/internal/config"
	"github.com/sagittarian/workqueue/internal/logging"
	"github.com/sagittarian/workqueue/internal/observability"
	"github.com/sagittarian/workqueue/internal/queue"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	observability.RegisterMetrics()

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.OTelConfig{
		ServiceName: firstNonEmpty(cfg.OTELServiceName, "workqueue-api"),
		Endpoint:    cfg.OTELExporterOTLPEndpoint,
		Env:         cfg.Env,
	})
	if err != nil {
		logger.Fatal("otel init failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Filesystem-backed task queue
	q, err := queue.New(cfg.QueueDir, logger)
	if err != nil {
		logger.Fatal("queue init failed", zap.Error(err))
	}

	observability.RegisterPendingGauge(func() float64 {
		tasks, err := q.List()
		if err != nil {
			return 0
		}
		return float64(len(tasks))
	})

	// HTTP server
	server := httpapi.NewServer(httpapi.Config{
		Port:            cfg.HTTPPort,
		DefaultPriority: cfg.DefaultPriority,
	}, logger, q)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
