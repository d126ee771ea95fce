package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mytasker/internal/app"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeFailure maps a failed Result to an HTTP status. Storage problems
// are the only server-side failures that cross the service boundary.
func writeFailure(w http.ResponseWriter, res app.Result) {
	status := http.StatusBadRequest
	switch res.Message {
	case app.MsgStoreError, app.MsgBackupFailed:
		status = http.StatusInternalServerError
	case app.MsgTaskNotFound, app.MsgNotificationNotFound, app.MsgUserNotFound:
		status = http.StatusNotFound
	}
	writeMessage(w, status, res.Message)
}

// writeLoginFailure keeps rejected credentials and lockouts on 401 so
// clients can tell them apart from malformed requests.
func writeLoginFailure(w http.ResponseWriter, res app.Result) {
	switch res.Message {
	case app.MsgEmailPasswordRequired:
		writeMessage(w, http.StatusBadRequest, res.Message)
	case app.MsgStoreError:
		writeMessage(w, http.StatusInternalServerError, res.Message)
	default:
		writeMessage(w, http.StatusUnauthorized, res.Message)
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
