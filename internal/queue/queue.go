// Package queue implements a durable task queue over a plain directory of
// files. Every pending task is one JSON file whose name encodes the
// scheduling fields (exectime, priority, id); the directory is the single
// source of truth and every operation re-derives state by listing it.
//
// The queue holds no lock and keeps no index. Filesystem atomicity of
// file creation and unlink is the only synchronization primitive, which
// makes the queue safe to use from any number of goroutines or separate
// processes as far as the filesystem itself is. There is no leasing:
// a task stays visible to every consumer's Peek until it is explicitly
// deleted, so two consumers racing can both select the same task. That
// is a property of the design, not a bug.
package queue

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Queue is a stateless facade over a task directory.
type Queue struct {
	dir    string
	logger *zap.Logger
}

// New returns a queue over dir, creating the directory if needed.
func New(dir string, logger *zap.Logger) (*Queue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	return &Queue{dir: dir, logger: logger}, nil
}

// Dir returns the queue's task directory.
func (q *Queue) Dir() string {
	return q.dir
}

// List returns the pending tasks in no particular order, re-reading the
// directory on every call. Files whose names do not parse are skipped
// with a warning instead of failing the whole listing: one bad file must
// never take the queue down.
func (q *Queue) List() ([]*FileTask, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("list queue dir: %w", err)
	}
	tasks := make([]*FileTask, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		task, err := TaskFromPath(filepath.Join(q.dir, entry.Name()))
		if err != nil {
			q.logger.Warn("skipping unparseable file in queue dir",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Peek returns the next task under the scheduling order, or nil if the
// queue is empty. A linear scan for the minimum is O(n), beats sorting,
// and handles the empty directory without a special case. Order-equal
// tasks tie-break by enumeration order.
func (q *Queue) Peek() (*FileTask, error) {
	tasks, err := q.List()
	if err != nil {
		return nil, err
	}
	var next *FileTask
	for _, task := range tasks {
		if next == nil || task.Less(&next.Task) {
			next = task
		}
	}
	return next, nil
}

// Enqueue creates a task with a fresh id and persists it as one file.
// The priority must fit the fixed-width filename encoding; rejecting it
// here keeps an unrepresentable value from silently corrupting the sort
// order on disk.
func (q *Queue) Enqueue(payload string, priority int, exectime int64) (*Task, error) {
	if priority < 0 || priority > MaxPriority {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrPriorityOutOfRange, priority, MaxPriority)
	}
	task := NewTask(payload, priority, q.dir, exectime, "")
	if err := task.Save(); err != nil {
		return nil, err
	}
	q.logger.Info("task enqueued",
		zap.String("id", task.ID),
		zap.Int("priority", task.Priority),
		zap.Int64("exectime", task.Exectime),
	)
	return task, nil
}

// DeleteByID removes the task with the given id. A missing id, or a file
// that vanishes between listing and unlinking, is a silent no-op: another
// process may legitimately have consumed the task already.
func (q *Queue) DeleteByID(id string) error {
	tasks, err := q.List()
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if task.ID == id {
			if err := task.Delete(); err != nil {
				return err
			}
			q.logger.Info("task deleted", zap.String("id", id))
			return nil
		}
	}
	return nil
}
