package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileTask is a task reconstructed from its filename alone. The ordering
// and identity fields (exectime, priority, id) come straight from the
// name; the payload is read from the file body only when it is actually
// requested. During a Peek over many pending tasks only the winner's
// body is ever opened.
type FileTask struct {
	Task
	loaded bool
}

// TaskFromPath parses a task filename into a FileTask. The name must be
// exactly three sep-joined fields with the fixed timestamp layout and
// priority width; anything else fails with ErrMalformedFilename rather
// than being coerced into a task.
func TaskFromPath(path string) (*FileTask, error) {
	name := filepath.Base(path)
	stem, ok := strings.CutSuffix(name, taskExt)
	if !ok {
		return nil, fmt.Errorf("%w: %q: missing %s extension", ErrMalformedFilename, name, taskExt)
	}

	parts := strings.SplitN(stem, sep, 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q: want 3 fields, got %d", ErrMalformedFilename, name, len(parts))
	}

	ts, err := time.ParseInLocation(timestampFormat, parts[0], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: bad timestamp: %v", ErrMalformedFilename, name, err)
	}

	if len(parts[1]) != priorityDigits {
		return nil, fmt.Errorf("%w: %q: priority field must be %d digits", ErrMalformedFilename, name, priorityDigits)
	}
	priority, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: bad priority: %v", ErrMalformedFilename, name, err)
	}

	if parts[2] == "" {
		return nil, fmt.Errorf("%w: %q: empty id", ErrMalformedFilename, name)
	}

	// The exectime sentinel 0 encodes as the epoch itself, so ts.Unix()
	// round-trips it exactly.
	return &FileTask{
		Task: Task{
			Priority: priority,
			Exectime: ts.Unix(),
			ID:       parts[2],
			Dir:      filepath.Dir(path),
		},
	}, nil
}

// Payload returns the task's payload, reading and caching the JSON body
// on first call. Subsequent calls reuse the cached value.
func (f *FileTask) Payload() (string, error) {
	if f.loaded {
		return f.Task.Payload, nil
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		return "", fmt.Errorf("read task %s: %w", f.ID, err)
	}
	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decode task %s: %w", f.ID, err)
	}
	f.Task.Payload = body.Payload
	f.loaded = true
	return f.Task.Payload, nil
}

// Materialize returns the fully loaded Task, forcing the payload read.
func (f *FileTask) Materialize() (*Task, error) {
	if _, err := f.Payload(); err != nil {
		return nil, err
	}
	return &f.Task, nil
}
