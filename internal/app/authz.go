package app

import (
	"context"
	"log/slog"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
	"mytasker/internal/session"
)

// Gate answers authorization questions about a session. The role cached
// in the session at login is authoritative for its lifetime; the store
// is consulted only when the session carries no role at all.
type Gate struct {
	users  domain.UserRepository
	audit  audit.Sink
	logger *slog.Logger
}

// NewGate creates a Gate.
func NewGate(users domain.UserRepository, sink audit.Sink, logger *slog.Logger) *Gate {
	return &Gate{users: users, audit: sink, logger: logger}
}

// IsAdmin reports whether the session belongs to an administrator.
// Store lookup failures deny access.
func (g *Gate) IsAdmin(ctx context.Context, s *session.Session) bool {
	if s == nil || !s.Bound() {
		return false
	}
	switch s.Role() {
	case domain.RoleAdmin:
		return true
	case "":
		// Fall through to the store lookup below.
	default:
		return false
	}

	userID := s.UserID()
	u, err := g.users.FindByID(ctx, userID)
	if err != nil {
		g.logger.Error("role lookup failed", "user_id", userID, "error", err)
		return false
	}
	if u == nil {
		return false
	}
	if u.Role == domain.RoleAdmin {
		// Only the admin role is cached back: a demotion must be
		// revisited on every check, a promotion need not be.
		s.CacheRole(domain.RoleAdmin)
		return true
	}
	return false
}
