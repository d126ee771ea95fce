package adapthttp

import (
	"net/http"
	"strings"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": sess.UserID(),
		"name":    sess.Name(),
		"email":   sess.Email(),
		"role":    sess.Role(),
	})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.auth.UpdateProfile(r.Context(), sess.UserID(), req.Name, req.Email)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	// Keep the session copy in step with what the store now holds: the
	// service trims both fields before writing them.
	sess.SetIdentity(strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.auth.ChangePassword(r.Context(), sess.UserID(), req.CurrentPassword, req.NewPassword)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type consentRequest struct {
	Approved bool `json:"approved"`
}

func (s *Server) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.auth.SetRetentionConsent(r.Context(), sess.UserID(), req.Approved)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := parseJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFromContext(r.Context())
	res := s.auth.DeleteAccount(r.Context(), w, sess, req.Password)
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
