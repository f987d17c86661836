package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagittarian/workqueue/internal/observability"
	"github.com/sagittarian/workqueue/internal/queue"
	"go.uber.org/zap"
)

type Server struct {
	httpServer      *http.Server
	logger          *zap.Logger
	queue           *queue.Queue
	defaultPriority int
}

type Config struct {
	Port            string
	DefaultPriority int
}

func NewServer(cfg Config, logger *zap.Logger, q *queue.Queue) *Server {
	r := mux.NewRouter()

	routeName := func(r *http.Request) string {
		if rt := mux.CurrentRoute(r); rt != nil {
			if tpl, err := rt.GetPathTemplate(); err == nil && tpl != "" {
				return tpl
			}
		}
		return r.URL.Path
	}

	// Middlewares (order matters)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware(routeName))
	r.Use(observability.HTTPMetricsMiddleware(routeName))
	r.Use(observability.AccessLogMiddleware(logger, routeName))

	srv := &Server{
		logger:          logger,
		queue:           q,
		defaultPriority: cfg.DefaultPriority,
	}

	// Metrics
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Health
	r.HandleFunc("/api/health", srv.handleHealth).Methods(http.MethodGet)

	// Web UI
	r.HandleFunc("/", srv.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/list", srv.handleList).Methods(http.MethodGet)
	r.HandleFunc("/new", srv.handleNew).Methods(http.MethodPost)
	r.HandleFunc("/delete", srv.handleDelete).Methods(http.MethodPost)

	// Worker API
	r.HandleFunc("/api/next", srv.handleNext).Methods(http.MethodGet)
	r.HandleFunc("/api/complete", srv.handleComplete).Methods(http.MethodPost)

	s := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srv.httpServer = s
	return srv
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
