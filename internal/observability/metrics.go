package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "workqueue",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	TasksEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "tasks_enqueued_total",
			Help:      "Tasks added to the queue.",
		},
		[]string{"source"},
	)

	TasksCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "tasks_completed_total",
			Help:      "Tasks reported complete and removed.",
		},
	)

	TasksDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "tasks_deleted_total",
			Help:      "Tasks removed through the web UI.",
		},
	)

	WorkerTasksProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "worker_tasks_processed_total",
			Help:      "Tasks the worker processed and reported complete.",
		},
	)

	WorkerEmptyPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "worker_empty_polls_total",
			Help:      "Polls that found no pending task.",
		},
	)

	WorkerPollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workqueue",
			Name:      "worker_poll_errors_total",
			Help:      "Polls that failed to reach the API or decode its response.",
		},
	)
)

func RegisterMetrics() {
	// MustRegister is safe to call once; if tests call multiple times, use Register and ignore errors.
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TasksEnqueuedTotal,
		TasksCompletedTotal,
		TasksDeletedTotal,
		WorkerTasksProcessedTotal,
		WorkerEmptyPollsTotal,
		WorkerPollErrorsTotal,
	)
}

// RegisterPendingGauge exposes the current queue depth through a callback,
// so the value is read from the directory at scrape time.
func RegisterPendingGauge(pending func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "workqueue",
			Name:      "tasks_pending",
			Help:      "Number of task files currently in the queue directory.",
		},
		pending,
	))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware records basic HTTP request metrics.
func HTTPMetricsMiddleware(routeName func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: 200}
			next.ServeHTTP(rec, r)

			route := routeName(r)
			method := r.Method
			status := strconv.Itoa(rec.status)

			HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
			HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		})
	}
}
