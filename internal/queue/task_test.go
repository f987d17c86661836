package queue

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
)

func TestFilenameEncoding(t *testing.T) {
	task := NewTask("send email", 100, "/tmp/q", 1700000000, "abc-123")

	want := "2023-11-14T22:13:20_00000100_abc-123.json"
	if got := task.Filename(); got != want {
		t.Fatalf("expected filename %q got %q", want, got)
	}
}

func TestFilenameZeroExectime(t *testing.T) {
	task := NewTask("asap", 1, "/tmp/q", 0, "id-1")

	if got := task.Filename(); !strings.HasPrefix(got, "1970-01-01T00:00:00"+sep) {
		t.Fatalf("zero exectime should encode as the epoch, got %q", got)
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	orig := NewTask("", 4242, "/data/queue", 1699999999, "f81d4fae-7dec-11d0-a765-00a0c91e6bf6")

	parsed, err := TaskFromPath("/data/queue/" + orig.Filename())
	if err != nil {
		t.Fatalf("TaskFromPath: %v", err)
	}

	if parsed.Exectime != orig.Exectime {
		t.Fatalf("exectime: want %d got %d", orig.Exectime, parsed.Exectime)
	}
	if parsed.Priority != orig.Priority {
		t.Fatalf("priority: want %d got %d", orig.Priority, parsed.Priority)
	}
	if parsed.ID != orig.ID {
		t.Fatalf("id: want %q got %q", orig.ID, parsed.ID)
	}
	if parsed.Dir != orig.Dir {
		t.Fatalf("dir: want %q got %q", orig.Dir, parsed.Dir)
	}
	if parsed.Filename() != orig.Filename() {
		t.Fatalf("filename: want %q got %q", orig.Filename(), parsed.Filename())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := NewTask("do the thing", 7, "/q", 1234567890, "some-id")

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Task
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got.Dir = orig.Dir // not serialized

	if got != *orig {
		t.Fatalf("round trip mismatch: want %+v got %+v", *orig, got)
	}
}

func TestTaskFromPathMalformed(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"no extension", "/q/2023-11-14T22:13:20_00000100_abc"},
		{"wrong extension", "/q/2023-11-14T22:13:20_00000100_abc.txt"},
		{"too few fields", "/q/2023-11-14T22:13:20_00000100.json"},
		{"bad timestamp", "/q/yesterday_00000100_abc.json"},
		{"bad priority", "/q/2023-11-14T22:13:20_lowish!!_abc.json"},
		{"short priority", "/q/2023-11-14T22:13:20_100_abc.json"},
		{"empty id", "/q/2023-11-14T22:13:20_00000100_.json"},
		{"stray file", "/q/.DS_Store"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TaskFromPath(tc.path)
			if !errors.Is(err, ErrMalformedFilename) {
				t.Fatalf("expected ErrMalformedFilename, got %v", err)
			}
		})
	}
}

func TestOrderingExectimeWinsOverPriority(t *testing.T) {
	early := NewTask("", 1, "", 100, "a")
	late := NewTask("", MaxPriority, "", 200, "b")

	if !early.Less(late) {
		t.Fatalf("earlier exectime must precede regardless of priority")
	}
	if late.Less(early) {
		t.Fatalf("later exectime must not precede")
	}
}

func TestOrderingPriorityBreaksTies(t *testing.T) {
	lo := NewTask("", 100, "", 500, "a")
	hi := NewTask("", 200, "", 500, "b")

	if !hi.Less(lo) {
		t.Fatalf("higher priority must precede at equal exectime")
	}
	if lo.Less(hi) {
		t.Fatalf("lower priority must not precede at equal exectime")
	}
}

func TestOrderingZeroExectimeSortsFirst(t *testing.T) {
	now := NewTask("", 0, "", 0, "a")
	scheduled := NewTask("", MaxPriority, "", 1, "b")

	if !now.Less(scheduled) {
		t.Fatalf("exectime 0 must be eligible before any positive timestamp")
	}
}

// Order-equality intentionally ignores id and payload: two distinct tasks
// with the same (exectime, priority) are interchangeable for scheduling.
func TestOrderEqualIgnoresIdentity(t *testing.T) {
	a := NewTask("first", 10, "", 300, "id-a")
	b := NewTask("second", 10, "", 300, "id-b")

	if !a.OrderEqual(b) {
		t.Fatalf("tasks with equal (exectime, priority) must be order-equal")
	}
	if a.Less(b) || b.Less(a) {
		t.Fatalf("order-equal tasks must not precede each other")
	}
}

// Overdue tasks keep their strict exectime order; eligibility in the past
// does not flatten them into one class.
func TestOrderingOverdueTasksStayStrict(t *testing.T) {
	older := NewTask("", 1, "", 1000, "a")
	newer := NewTask("", MaxPriority, "", 2000, "b")

	if !older.Less(newer) {
		t.Fatalf("the longer-overdue task must still come first")
	}
}

func TestSortDescendingPriorities(t *testing.T) {
	const exectime = 1800000000
	tasks := make([]*Task, 0, 100)
	for p := 100; p <= 199; p++ {
		tasks = append(tasks, NewTask("", p, "", exectime, ""))
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Less(tasks[j]) })

	for i, task := range tasks {
		if want := 199 - i; task.Priority != want {
			t.Fatalf("position %d: want priority %d got %d", i, want, task.Priority)
		}
	}
}

func TestNewTaskGeneratesID(t *testing.T) {
	a := NewTask("", 1, "", 0, "")
	b := NewTask("", 1, "", 0, "")

	if a.ID == "" || b.ID == "" {
		t.Fatalf("expected generated ids, got %q and %q", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("generated ids must be unique, both were %q", a.ID)
	}
}

func TestPrettyExectime(t *testing.T) {
	if got := NewTask("", 1, "", 0, "").PrettyExectime(); got != "NOW" {
		t.Fatalf("expected NOW for zero exectime, got %q", got)
	}
	if got := NewTask("", 1, "", 1700000000, "").PrettyExectime(); got != "2023-11-14T22:13:20" {
		t.Fatalf("unexpected pretty exectime %q", got)
	}
}
