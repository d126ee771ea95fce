package adapthttp

import (
	"net/http"
	"time"

	"mytasker/internal/domain"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsDone      bool   `json:"is_done"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func mapTask(t domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.IsDone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	tasks, err := s.tasks.List(r.Context(), sess.UserID())
	if err != nil {
		s.logger.Error("task list failed", "user_id", sess.UserID(), "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error occurred")
		return
	}
	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, mapTask(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	sess := sessionFromContext(r.Context())
	t, res := s.tasks.Get(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, mapTask(*t))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	t, res := s.tasks.Create(r.Context(), sess.UserID(), req.Title, req.Description)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, mapTask(*t))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	var req taskRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.tasks.Update(r.Context(), sess.UserID(), id, req.Title, req.Description, req.IsDone)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.tasks.Toggle(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.tasks.Delete(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
