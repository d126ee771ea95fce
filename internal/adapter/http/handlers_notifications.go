package adapthttp

import (
	"net/http"
	"time"

	"mytasker/internal/domain"
)

type notificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	items, err := s.notifications.ListForUser(r.Context(), sess.UserID())
	if err != nil {
		s.logger.Error("notification list failed", "user_id", sess.UserID(), "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error occurred")
		return
	}
	resp := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			Read:      n.Read,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReadNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid notification id")
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.notifications.MarkRead(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type adminNotificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	ReadCount int       `json:"read_count"`
}

func mapAdminNotification(n domain.Notification) adminNotificationResponse {
	return adminNotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
		ReadCount: n.ReadCount,
	}
}

func (s *Server) handleAdminListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := s.notifications.ListWithReadCounts(r.Context())
	if err != nil {
		s.logger.Error("notification list failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error occurred")
		return
	}
	resp := make([]adminNotificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, mapAdminNotification(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *Server) handleAdminCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	n, res := s.notifications.Create(r.Context(), sess.UserID(), req.Title, req.Message)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, mapAdminNotification(*n))
}

func (s *Server) handleAdminDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid notification id")
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.notifications.Delete(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
