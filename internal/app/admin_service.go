package app

import (
	"context"
	"log/slog"
	"strconv"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
)

// MsgUserNotFound is returned for admin operations on unknown users.
const MsgUserNotFound = "User not found"

// AdminService implements the administrative user management operations.
// Callers must pass the acting administrator's ID; the service refuses
// operations targeting the actor's own account.
type AdminService struct {
	users  domain.UserRepository
	audits domain.AuditRepository
	audit  audit.Sink
	logger *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(users domain.UserRepository, audits domain.AuditRepository, sink audit.Sink, logger *slog.Logger) *AdminService {
	return &AdminService{users: users, audits: audits, audit: sink, logger: logger}
}

// ListUsers returns all accounts.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ListAudit returns audit entries matching the filter, newest first.
func (s *AdminService) ListAudit(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	return s.audits.List(ctx, f)
}

// ChangeRole sets the target user's role.
func (s *AdminService) ChangeRole(ctx context.Context, actorID, targetID int64, role domain.Role) Result {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return failure("Invalid role")
	}
	u, res := s.target(ctx, actorID, targetID)
	if !res.OK {
		return res
	}
	if err := s.users.SetRole(ctx, targetID, role); err != nil {
		s.logger.Error("role change failed", "target_id", targetID, "error", err)
		return failure(MsgStoreError)
	}
	s.recordAdmin(ctx, actorID, targetID, "CHANGE_ROLE", "Role of "+u.Email+" set to "+string(role))
	return success()
}

// SetLocked applies or clears the hard lock on the target account.
// Clearing the lock also resets the failed-attempt counter so the user
// can log in immediately.
func (s *AdminService) SetLocked(ctx context.Context, actorID, targetID int64, locked bool) Result {
	u, res := s.target(ctx, actorID, targetID)
	if !res.OK {
		return res
	}
	if err := s.users.SetLocked(ctx, targetID, locked); err != nil {
		s.logger.Error("lock change failed", "target_id", targetID, "error", err)
		return failure(MsgStoreError)
	}
	action, details := "LOCK_ACCOUNT", "Account locked: "+u.Email
	if !locked {
		action, details = "UNLOCK_ACCOUNT", "Account unlocked: "+u.Email
		if err := s.users.ResetLoginAttempts(ctx, targetID); err != nil {
			s.logger.Error("attempt reset failed", "target_id", targetID, "error", err)
			return failure(MsgStoreError)
		}
	}
	s.recordAdmin(ctx, actorID, targetID, action, details)
	return success()
}

// DeleteUser removes the target account and its dependent records.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID int64) Result {
	u, res := s.target(ctx, actorID, targetID)
	if !res.OK {
		return res
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		s.logger.Error("user delete failed", "target_id", targetID, "error", err)
		return failure(MsgStoreError)
	}
	s.recordAdmin(ctx, actorID, targetID, "DELETE_USER", "Account deleted by admin: "+u.Email)
	return success()
}

// target loads the target user and rejects self-modification.
func (s *AdminService) target(ctx context.Context, actorID, targetID int64) (*domain.User, Result) {
	if actorID == targetID {
		return nil, failure(MsgSelfModification)
	}
	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		s.logger.Error("user lookup failed", "target_id", targetID, "error", err)
		return nil, failure(MsgStoreError)
	}
	if u == nil {
		return nil, failure(MsgUserNotFound)
	}
	return u, success()
}

func (s *AdminService) recordAdmin(ctx context.Context, actorID, targetID int64, action, details string) {
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     action,
		Resource:   "user",
		ResourceID: strconv.FormatInt(targetID, 10),
		Details:    details,
	})
}
