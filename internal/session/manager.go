package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mytasker/internal/domain"
)

// Defaults for session behavior. The idle timeout and sync interval
// mirror the product's security policy: sessions die after 30 minutes of
// inactivity, and stored activity is refreshed at most every 5 minutes.
const (
	DefaultCookieName   = "mytasker_session"
	DefaultIdleTimeout  = 30 * time.Minute
	DefaultSyncInterval = 5 * time.Minute
)

// Config tunes a Manager. Zero values fall back to the defaults above.
type Config struct {
	CookieName   string
	CookiePath   string
	CookieSecure bool
	IdleTimeout  time.Duration
	SyncInterval time.Duration
}

func (c *Config) withDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = DefaultSyncInterval
	}
}

// Manager drives the session lifecycle. It persists last_activity to the
// credential store on a throttle; those writes are telemetry-adjacent and
// never affect the authentication result.
type Manager struct {
	store  *Store
	users  domain.UserRepository
	logger *slog.Logger
	cfg    Config

	now func() time.Time
}

// NewManager creates a Manager backed by an in-process store.
func NewManager(users domain.UserRepository, logger *slog.Logger, cfg Config) *Manager {
	cfg.withDefaults()
	return &Manager{
		store:  NewStore(),
		users:  users,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Start returns the session identified by the request cookie, creating a
// fresh anonymous session (and setting its cookie) when there is none.
// Idempotent: calling it twice for the same request yields the same
// session.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if s := m.store.Get(c.Value); s != nil {
			return s
		}
	}
	s := m.store.create()
	m.setCookie(w, s.ID())
	return s
}

// Establish binds the authenticated identity into the session and rotates
// the session identifier so that a pre-login identifier can never be
// replayed into an authenticated one. The new cookie is issued here,
// before any response body is written.
func (m *Manager) Establish(w http.ResponseWriter, s *Session, u *domain.User) {
	now := m.now()
	s.mu.Lock()
	s.userID = u.ID
	s.name = u.Name
	s.email = u.Email
	s.role = u.Role
	if s.role == "" {
		s.role = domain.RoleUser
	}
	s.lastActivity = now
	s.lastStoreSync = now
	s.mu.Unlock()

	m.store.rotate(s)
	m.setCookie(w, s.ID())
}

// IsActive reports whether the session carries a live authenticated
// identity. An idle time at or beyond the configured timeout destroys the
// session before returning false; otherwise the activity clock is
// refreshed. At most once per sync interval the refreshed activity is
// persisted to the credential store; persistence failures are logged and
// do not affect the result.
func (m *Manager) IsActive(ctx context.Context, w http.ResponseWriter, s *Session) bool {
	if s == nil {
		return false
	}

	now := m.now()
	s.mu.Lock()
	if s.userID == 0 {
		s.mu.Unlock()
		return false
	}
	if now.Sub(s.lastActivity) >= m.cfg.IdleTimeout {
		s.mu.Unlock()
		m.Destroy(w, s)
		return false
	}
	s.lastActivity = now

	var syncID int64
	if now.Sub(s.lastStoreSync) >= m.cfg.SyncInterval {
		syncID = s.userID
		s.lastStoreSync = now
	}
	s.mu.Unlock()

	if syncID != 0 {
		if err := m.users.TouchActivity(ctx, syncID); err != nil {
			m.logger.Warn("activity sync failed", "user_id", syncID, "error", err)
		}
	}
	return true
}

// Destroy clears all session state, removes the session from the store,
// and expires the cookie. Safe to call with a nil ResponseWriter (e.g.
// from non-HTTP callers).
func (m *Manager) Destroy(w http.ResponseWriter, s *Session) {
	if s == nil {
		return
	}
	m.store.remove(s.ID())
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	m.expireCookie(w)
}

// Lookup returns the live session for id, or nil. Used by tests and by
// callers that hold an identifier without a request.
func (m *Manager) Lookup(id string) *Session {
	return m.store.Get(id)
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     m.cfg.CookiePath,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
