package adapthttp

import (
	"net/http"
	"time"

	"mytasker/internal/domain"
)

type adminUserResponse struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	LoginAttempts     int         `json:"login_attempts"`
	AccountLocked     bool        `json:"account_locked"`
	LastLogin         *time.Time  `json:"last_login,omitempty"`
	LastActivity      *time.Time  `json:"last_activity,omitempty"`
	RetentionApproved bool        `json:"retention_approved"`
	CreatedAt         time.Time   `json:"created_at"`
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("user list failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error occurred")
		return
	}
	resp := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, adminUserResponse{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			Role:              u.Role,
			LoginAttempts:     u.LoginAttempts,
			AccountLocked:     u.AccountLocked,
			LastLogin:         u.LastLogin,
			LastActivity:      u.LastActivity,
			RetentionApproved: u.RetentionApproved,
			CreatedAt:         u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type changeRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (s *Server) handleAdminChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req changeRoleRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.admin.ChangeRole(r.Context(), sess.UserID(), id, req.Role)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type setLockedRequest struct {
	Locked bool `json:"locked"`
}

func (s *Server) handleAdminSetLocked(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req setLockedRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.admin.SetLocked(r.Context(), sess.UserID(), id, req.Locked)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.admin.DeleteUser(r.Context(), sess.UserID(), id)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type auditEntryResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleAdminListAudit(w http.ResponseWriter, r *http.Request) {
	f := domain.AuditFilter{
		UserID:   int64(intQuery(r, "user_id", 0)),
		Action:   r.URL.Query().Get("action"),
		Resource: r.URL.Query().Get("resource"),
		Limit:    intQuery(r, "limit", 100),
		Offset:   intQuery(r, "offset", 0),
	}
	entries, err := s.admin.ListAudit(r.Context(), f)
	if err != nil {
		s.logger.Error("audit list failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error occurred")
		return
	}
	resp := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, auditEntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			UserName:   e.UserName,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			Details:    e.Details,
			IPAddress:  e.IPAddress,
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
