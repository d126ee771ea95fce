package adapthttp

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.List()
	if err != nil {
		s.logger.Error("backup list failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Backup operation failed")
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	info, res := s.backups.Create(r.Context(), sess.UserID())
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	res := s.backups.Restore(r.Context(), sess.UserID(), chi.URLParam(r, "name"))
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	name := chi.URLParam(r, "name")
	rc, size, err := s.backups.Open(r.Context(), sess.UserID(), name)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Backup not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/sql")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = io.Copy(w, rc)
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	res := s.backups.Delete(r.Context(), sess.UserID(), chi.URLParam(r, "name"))
	if !res.OK {
		writeFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
