// Package worker implements the queue consumer: it polls the HTTP API for
// the next eligible task, records the payload in a completion log, and
// reports the task done so it is removed from the queue.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sagittarian/workqueue/internal/observability"
	"go.uber.org/zap"
)

const logTimestampFormat = "2006-01-02T15:04:05"

type Config struct {
	// APIURL is the base URL of the worker API, e.g. http://localhost:8080/api.
	APIURL    string
	PollDelay time.Duration
	Logfile   string
}

type Worker struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Worker {
	return &Worker{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type task struct {
	ID      string `json:"id"`
	Payload string `json:"payload"`
}

type nextResponse struct {
	Status string `json:"status"`
	Task   *task  `json:"task"`
}

// Run polls until the context is cancelled. An unreachable API is a
// retry-forever condition with the configured delay between attempts,
// never a fatal error.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started",
		zap.String("api_url", w.cfg.APIURL),
		zap.Duration("poll_delay", w.cfg.PollDelay),
		zap.String("logfile", w.cfg.Logfile),
	)

	for {
		if err := w.ProcessNext(ctx); err != nil {
			observability.WorkerPollErrorsTotal.Inc()
			w.logger.Warn("poll failed, will retry", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-time.After(w.cfg.PollDelay):
		}
	}
}

// ProcessNext performs one poll iteration: fetch the next task, log its
// payload, report it complete. A response with no task is not an error.
func (w *Worker) ProcessNext(ctx context.Context) error {
	t, err := w.fetchNext(ctx)
	if err != nil {
		return err
	}
	if t == nil {
		observability.WorkerEmptyPollsTotal.Inc()
		w.logger.Debug("no current task")
		return nil
	}

	if err := w.writeLogLine(t.Payload); err != nil {
		// Do not report complete: the task stays queued and the work
		// will be retried on a later poll.
		return err
	}

	if err := w.reportComplete(ctx, t.ID); err != nil {
		return err
	}

	observability.WorkerTasksProcessedTotal.Inc()
	w.logger.Info("task completed",
		zap.String("id", t.ID),
		zap.String("payload", t.Payload),
	)
	return nil
}

func (w *Worker) fetchNext(ctx context.Context) (*task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.APIURL+"/next", nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch next task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch next task: unexpected status %d", resp.StatusCode)
	}

	var next nextResponse
	if err := json.NewDecoder(resp.Body).Decode(&next); err != nil {
		return nil, fmt.Errorf("decode next task: %w", err)
	}
	return next.Task, nil
}

func (w *Worker) reportComplete(ctx context.Context, id string) error {
	body, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.cfg.APIURL+"/complete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("report complete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report complete: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// writeLogLine appends one timestamped line per completed task.
func (w *Worker) writeLogLine(payload string) error {
	f, err := os.OpenFile(w.cfg.Logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open logfile: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s: %s\n", time.Now().UTC().Format(logTimestampFormat), payload)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write logfile: %w", err)
	}
	return nil
}
