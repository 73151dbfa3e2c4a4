package httpapi

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/park285/playpad-server/internal/domain"
	"github.com/park285/playpad-server/internal/service/scheduler"
	"go.uber.org/zap"
)

type generateRequest struct {
	Prompt *string `json:"prompt"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in domain.Task
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	task, err := s.tasks.Create(r.Context(), in)
	if err != nil {
		s.taskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	task, err := s.tasks.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.taskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateTasks(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Prompt == nil {
		writeError(w, http.StatusBadRequest, "No prompt provided")
		return
	}
	tasks, err := s.tasks.Generate(r.Context(), *req.Prompt)
	if err != nil {
		s.taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.tasks.ExportCSV(r.Context(), &buf); err != nil {
		s.taskError(w, err)
		return
	}
	writeAttachment(w, "text/csv", "tasks.csv", buf.Bytes())
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.tasks.ExportICS(r.Context(), &buf); err != nil {
		s.taskError(w, err)
		return
	}
	writeAttachment(w, "text/calendar", "tasks.ics", buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.tasks.ExportPDF(r.Context(), &buf); err != nil {
		s.taskError(w, err)
		return
	}
	writeAttachment(w, "application/pdf", "tasks.pdf", buf.Bytes())
}

func (s *Server) taskError(w http.ResponseWriter, err error) {
	var fieldErr *scheduler.FieldError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, fieldErr.Error())
	case errors.Is(err, scheduler.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, scheduler.ErrEmptyPatch):
		writeError(w, http.StatusBadRequest, "No data provided")
	case errors.Is(err, scheduler.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "Empty prompt provided")
	case errors.Is(err, scheduler.ErrDuplicateTask):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("task_request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
