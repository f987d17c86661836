package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// sep joins the timestamp, priority and id fields of a task filename.
	sep = "_"

	// timestampFormat is the fixed-width UTC layout embedded in filenames.
	// It sorts lexicographically in time order, but the scheduling order
	// is defined by Less, not by filename order.
	timestampFormat = "2006-01-02T15:04:05"

	// priorityDigits is the zero-padded width reserved for the priority.
	priorityDigits = 8

	// MaxPriority is the largest priority representable in a filename.
	MaxPriority = 99999999

	taskExt = ".json"

	taskFileMode = 0o644
)

// Task is one unit of queued work. A task is immutable once persisted:
// it is created, written as a single file, and eventually removed. There
// is no update path.
type Task struct {
	Payload  string `json:"payload"`
	Priority int    `json:"priority"`
	Exectime int64  `json:"exectime"` // unix seconds UTC; 0 means "now"
	ID       string `json:"id"`

	// Dir is where the task file lives. It is storage location only,
	// never part of the task's identity, and is not serialized.
	Dir string `json:"-"`
}

// NewTask builds an in-memory task. If id is empty a random UUID is
// generated; no check against existing files is made, collisions are
// assumed negligible in the UUID space.
func NewTask(payload string, priority int, dir string, exectime int64, id string) *Task {
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{
		Payload:  payload,
		Priority: priority,
		Exectime: exectime,
		ID:       id,
		Dir:      dir,
	}
}

// Filename returns the canonical name for this task, derived purely from
// (exectime, priority, id). Two tasks with identical triples map to the
// same name.
func (t *Task) Filename() string {
	ts := time.Unix(t.Exectime, 0).UTC().Format(timestampFormat)
	return fmt.Sprintf("%s%s%0*d%s%s%s", ts, sep, priorityDigits, t.Priority, sep, t.ID, taskExt)
}

// Path returns the full path of the task file.
func (t *Task) Path() string {
	return filepath.Join(t.Dir, t.Filename())
}

// Save writes the serialized task to its canonical path. An existing file
// with the same name is overwritten; that only happens on an id collision,
// which is out of scope.
func (t *Task) Save() error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", t.ID, err)
	}
	if err := os.WriteFile(t.Path(), data, taskFileMode); err != nil {
		return fmt.Errorf("save task %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes the task file. A file that is already gone is treated as
// success: another process may have consumed the task in the meantime.
func (t *Task) Delete() error {
	err := os.Remove(t.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete task %s: %w", t.ID, err)
	}
	return nil
}

// Less reports whether t should run before other: earlier exectime first,
// and for equal exectimes the higher priority wins. Tasks whose exectime
// has already passed are still compared strictly by exectime; overdue
// tasks are not collapsed into a single "due now" class.
func (t *Task) Less(other *Task) bool {
	if t.Exectime == other.Exectime {
		return t.Priority > other.Priority
	}
	return t.Exectime < other.Exectime
}

// OrderEqual reports whether t and other occupy the same position in the
// scheduling order. It deliberately ignores id and payload: two genuinely
// distinct tasks compare as order-equal when their (exectime, priority)
// match, and Peek breaks such ties by enumeration order. Do not use this
// as identity.
func (t *Task) OrderEqual(other *Task) bool {
	return t.Exectime == other.Exectime && t.Priority == other.Priority
}

// PrettyExectime renders the exectime for display; the zero sentinel
// renders as NOW.
func (t *Task) PrettyExectime() string {
	if t.Exectime == 0 {
		return "NOW"
	}
	return time.Unix(t.Exectime, 0).UTC().Format(timestampFormat)
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(id=%s, priority=%d, exectime=%d, payload=%q)",
		t.ID, t.Priority, t.Exectime, t.Payload)
}
