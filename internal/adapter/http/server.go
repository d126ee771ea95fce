// Package adapthttp is the driving HTTP adapter: it routes JSON API
// requests to the application services and enforces the session, CSRF,
// and authorization middleware chain.
package adapthttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mytasker/internal/app"
	"mytasker/internal/audit"
	"mytasker/internal/session"
)

// Server routes requests to application services.
type Server struct {
	auth          *app.AuthService
	tasks         *app.TaskService
	notifications *app.NotificationService
	admin         *app.AdminService
	backups       *app.BackupService
	gate          *app.Gate
	sessions      *session.Manager
	audit         audit.Sink
	logger        *slog.Logger
	sso           *SSO
}

// New creates a Server wired to the given application services.
// backups and sso may be nil; their routes are then not mounted.
func New(
	auth *app.AuthService,
	tasks *app.TaskService,
	notifications *app.NotificationService,
	admin *app.AdminService,
	backups *app.BackupService,
	gate *app.Gate,
	sessions *session.Manager,
	sink audit.Sink,
	logger *slog.Logger,
	sso *SSO,
) *Server {
	return &Server{
		auth:          auth,
		tasks:         tasks,
		notifications: notifications,
		admin:         admin,
		backups:       backups,
		gate:          gate,
		sessions:      sessions,
		audit:         sink,
		logger:        logger,
		sso:           sso,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withRequestID)
	r.Use(s.withLogging)
	r.Use(s.withClientIP)
	r.Use(s.withSession)
	r.Use(s.requireCSRF)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/csrf", s.handleCSRFToken)
		r.Get("/session", s.handleSessionInfo)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		if s.sso != nil {
			r.Get("/sso/login", s.sso.handleLogin)
			r.Get("/sso/callback", s.sso.handleCallback)
		}
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleCreateTask)
		r.Get("/{id}", s.handleGetTask)
		r.Put("/{id}", s.handleUpdateTask)
		r.Post("/{id}/toggle", s.handleToggleTask)
		r.Delete("/{id}", s.handleDeleteTask)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListNotifications)
		r.Post("/{id}/read", s.handleReadNotification)
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleGetProfile)
		r.Put("/", s.handleUpdateProfile)
		r.Put("/password", s.handleChangePassword)
		r.Put("/consent", s.handleSetConsent)
		r.Post("/delete", s.handleDeleteAccount)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAuth, s.requireAdmin)
		r.Get("/users", s.handleAdminListUsers)
		r.Put("/users/{id}/role", s.handleAdminChangeRole)
		r.Put("/users/{id}/lock", s.handleAdminSetLocked)
		r.Delete("/users/{id}", s.handleAdminDeleteUser)

		r.Get("/notifications", s.handleAdminListNotifications)
		r.Post("/notifications", s.handleAdminCreateNotification)
		r.Delete("/notifications/{id}", s.handleAdminDeleteNotification)

		r.Get("/audit", s.handleAdminListAudit)

		if s.backups != nil {
			r.Get("/backups", s.handleListBackups)
			r.Post("/backups", s.handleCreateBackup)
			r.Post("/backups/{name}/restore", s.handleRestoreBackup)
			r.Get("/backups/{name}/download", s.handleDownloadBackup)
			r.Delete("/backups/{name}", s.handleDeleteBackup)
		}
	})

	return r
}
