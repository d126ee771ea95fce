package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
)

// RetentionPeriod is how long an account may sit inactive before it is
// eligible for automatic deletion under the data retention policy.
const RetentionPeriod = 2 // years

// RetentionService deletes accounts that have been inactive beyond the
// retention period and consented to the policy. It is driven by a
// periodic caller, not an internal timer, so tests control the clock.
type RetentionService struct {
	users  domain.UserRepository
	audit  audit.Sink
	logger *slog.Logger

	now func() time.Time
}

// NewRetentionService creates a RetentionService.
func NewRetentionService(users domain.UserRepository, sink audit.Sink, logger *slog.Logger) *RetentionService {
	return &RetentionService{users: users, audit: sink, logger: logger, now: time.Now}
}

// Sweep deletes all eligible accounts and returns how many were removed.
// A failed deletion is logged and skipped; the sweep continues.
func (s *RetentionService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(-RetentionPeriod, 0, 0)
	stale, err := s.users.FindInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, u := range stale {
		if err := s.users.Delete(ctx, u.ID); err != nil {
			s.logger.Error("retention delete failed", "user_id", u.ID, "error", err)
			continue
		}
		// Actor 0 marks the system itself as the initiator.
		s.audit.Record(ctx, audit.Event{
			UserID:     0,
			Action:     "AUTO_DELETE_ACCOUNT",
			Resource:   "user",
			ResourceID: strconv.FormatInt(u.ID, 10),
			Details:    "Account deleted by retention policy: " + u.Email,
		})
		deleted++
	}
	return deleted, nil
}

// Run sweeps on the given interval until the context is canceled.
func (s *RetentionService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error("retention sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("retention sweep removed accounts", "count", n)
			}
		}
	}
}
