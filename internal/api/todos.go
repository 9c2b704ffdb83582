package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/serverdb"
)

// CreateTodoRequest is the JSON body for POST /v1/todos.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the JSON body for PATCH /v1/todos/{id}.
// Only the completed flag is mutable; text edits are not part of the API.
type UpdateTodoRequest struct {
	Completed *bool `json:"completed"`
}

// handleListTodos handles GET /v1/todos.
func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.ListTodos()
	if err != nil {
		logFor(r.Context()).Error("list todos", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list todos")
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

// handleCreateTodo handles POST /v1/todos.
func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}

	text := models.NormalizeText(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "text is required")
		return
	}
	if len(text) > s.config.MaxTextLen {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("text exceeds %d characters", s.config.MaxTextLen))
		return
	}

	change, err := s.store.CreateTodo(text)
	if err != nil {
		logFor(r.Context()).Error("create todo", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to create todo")
		return
	}

	s.metrics.RecordCreate()
	s.hub.Broadcast(change)
	writeJSON(w, http.StatusCreated, change.Todo)
}

// handleUpdateTodo handles PATCH /v1/todos/{id}.
func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	if req.Completed == nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "completed is required")
		return
	}

	change, err := s.store.SetTodoCompleted(id, *req.Completed)
	if errors.Is(err, serverdb.ErrTodoNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("todo %d not found", id))
		return
	}
	if err != nil {
		logFor(r.Context()).Error("update todo", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to update todo")
		return
	}

	s.metrics.RecordUpdate()
	s.hub.Broadcast(change)
	writeJSON(w, http.StatusOK, change.Todo)
}

// handleDeleteTodo handles DELETE /v1/todos/{id}.
func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromPath(w, r)
	if !ok {
		return
	}

	change, err := s.store.DeleteTodo(id)
	if errors.Is(err, serverdb.ErrTodoNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("todo %d not found", id))
		return
	}
	if err != nil {
		logFor(r.Context()).Error("delete todo", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to delete todo")
		return
	}

	s.metrics.RecordDelete()
	s.hub.Broadcast(change)
	w.WriteHeader(http.StatusNoContent)
}

// handleChangesTail handles GET /v1/todos/changes: recent journal entries,
// ascending seq order. Supports ?limit=N (default 20, max 500).
func (s *Server) handleChangesTail(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	changes, err := s.store.ChangesTail(limit)
	if err != nil {
		logFor(r.Context()).Error("changes tail", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to read changes")
		return
	}
	if changes == nil {
		changes = []models.Change{}
	}
	writeJSON(w, http.StatusOK, changes)
}

// todoIDFromPath parses the {id} path value, writing a 400 on failure.
func todoIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid todo id")
		return 0, false
	}
	return id, true
}
