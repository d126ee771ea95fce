package adapthttp

import (
	"net/http"
)

type registerRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	RetentionApproved bool   `json:"retention_approved"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleCSRFToken issues the session's CSRF token. Anonymous sessions
// get one too, so login and registration forms can be protected.
func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": sess.CSRFToken()})
}

// handleSessionInfo reports the current session's identity, if any.
func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if !s.sessions.IsActive(r.Context(), w, sess) {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       sess.UserID(),
		"name":          sess.Name(),
		"email":         sess.Email(),
		"role":          sess.Role(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, res := s.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.RetentionApproved)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.auth.Login(r.Context(), w, sess, req.Email, req.Password)
	if !res.OK {
		writeLoginFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": sess.UserID(),
		"name":    sess.Name(),
		"email":   sess.Email(),
		"role":    sess.Role(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.auth.Logout(r.Context(), w, sess)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
