package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sagittarian/workqueue/internal/observability"
	"github.com/sagittarian/workqueue/internal/queue"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string, details string) {
	writeJSON(w, status, apiError{Error: msg, Details: details})
}

// taskView is what the templates render for one pending task.
type taskView struct {
	ID       string
	Payload  string
	Priority int
	Exectime string
}

func (s *Server) viewOf(t *queue.FileTask) taskView {
	payload, err := t.Payload()
	if err != nil {
		// The file may have been consumed between listing and reading;
		// render what the filename alone gives us.
		s.logger.Warn("could not read task payload", zap.String("id", t.ID), zap.Error(err))
	}
	return taskView{
		ID:       t.ID,
		Payload:  payload,
		Priority: t.Priority,
		Exectime: t.PrettyExectime(),
	}
}

type indexData struct {
	Item            *taskView
	DefaultPriority int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	next, err := s.queue.Peek()
	if err != nil {
		http.Error(w, "queue unavailable", http.StatusInternalServerError)
		s.logger.Error("peek failed", zap.Error(err))
		return
	}

	data := indexData{DefaultPriority: s.defaultPriority}
	if next != nil {
		v := s.viewOf(next)
		data.Item = &v
	}
	s.render(w, "index.html", data)
}

type listData struct {
	Items           []taskView
	DefaultPriority int
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.queue.List()
	if err != nil {
		http.Error(w, "queue unavailable", http.StatusInternalServerError)
		s.logger.Error("list failed", zap.Error(err))
		return
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Less(&tasks[j].Task) })

	data := listData{
		Items:           make([]taskView, 0, len(tasks)),
		DefaultPriority: s.defaultPriority,
	}
	for _, t := range tasks {
		data.Items = append(data.Items, s.viewOf(t))
	}
	s.render(w, "list.html", data)
}

// exectimeFormats are the timestamp layouts the enqueue form accepts, all
// interpreted as UTC. Anything else schedules the task for "now".
var exectimeFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseExectime(value string) int64 {
	for _, layout := range exectimeFormats {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts.Unix()
		}
	}
	return 0
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	payload := r.PostFormValue("payload")
	if payload == "" {
		http.Error(w, "payload is required", http.StatusBadRequest)
		return
	}

	priority, err := strconv.Atoi(r.PostFormValue("priority"))
	if err != nil {
		priority = s.defaultPriority
	}

	exectime := parseExectime(r.PostFormValue("exectime"))

	if _, err := s.queue.Enqueue(payload, priority, exectime); err != nil {
		if errors.Is(err, queue.ErrPriorityOutOfRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "could not enqueue task", http.StatusInternalServerError)
		s.logger.Error("enqueue failed", zap.Error(err))
		return
	}
	observability.TasksEnqueuedTotal.WithLabelValues("form").Inc()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if id := r.PostFormValue("id"); id != "" {
		if err := s.queue.DeleteByID(id); err != nil {
			http.Error(w, "could not delete task", http.StatusInternalServerError)
			s.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
			return
		}
		observability.TasksDeletedTotal.Inc()
	}

	http.Redirect(w, r, "/list", http.StatusSeeOther)
}

type nextResponse struct {
	Status string      `json:"status"`
	Task   *queue.Task `json:"task"`
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	next, err := s.queue.Peek()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if next == nil {
		writeJSON(w, http.StatusOK, nextResponse{Status: "ok"})
		return
	}

	task, err := next.Materialize()
	if err != nil {
		// Another consumer may have removed the file after our scan;
		// report an empty queue rather than failing the poll.
		s.logger.Warn("task vanished before read", zap.String("id", next.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, nextResponse{Status: "ok"})
		return
	}

	writeJSON(w, http.StatusOK, nextResponse{Status: "ok", Task: task})
}

type completeRequest struct {
	ID string `json:"id"`
}

type completeResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ID == "" {
		writeErr(w, http.StatusBadRequest, "validation_error", "id is required")
		return
	}

	// Deleting an id that is already gone is a no-op; completion reports
	// from racing workers must not fail.
	if err := s.queue.DeleteByID(req.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	observability.TasksCompletedTotal.Inc()

	writeJSON(w, http.StatusOK, completeResponse{Status: "ok"})
}
