package app

import (
	"testing"
	"time"

	"mytasker/internal/domain"
)

func TestLockoutPolicy_Evaluate(t *testing.T) {
	policy := DefaultLockoutPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	attemptAt := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	t.Run("hard lock wins over everything", func(t *testing.T) {
		u := &domain.User{AccountLocked: true, LoginAttempts: 0}
		d := policy.Evaluate(u, now)
		if d.State != LockoutHardLocked {
			t.Fatalf("state = %v, want LockoutHardLocked", d.State)
		}
	})

	t.Run("below ceiling is open", func(t *testing.T) {
		u := &domain.User{LoginAttempts: 4, LastLoginAttempt: attemptAt(time.Second)}
		d := policy.Evaluate(u, now)
		if d.State != LockoutOpen || d.ResetCounter {
			t.Fatalf("got %+v, want open without reset", d)
		}
	})

	t.Run("at ceiling inside window is cooling", func(t *testing.T) {
		u := &domain.User{LoginAttempts: 5, LastLoginAttempt: attemptAt(5 * time.Minute)}
		d := policy.Evaluate(u, now)
		if d.State != LockoutCooling {
			t.Fatalf("state = %v, want LockoutCooling", d.State)
		}
		if d.RemainingMinutes != 10 {
			t.Errorf("remaining = %d, want 10", d.RemainingMinutes)
		}
	})

	t.Run("remaining minutes round up", func(t *testing.T) {
		u := &domain.User{LoginAttempts: 5, LastLoginAttempt: attemptAt(14*time.Minute + 59*time.Second)}
		d := policy.Evaluate(u, now)
		if d.State != LockoutCooling || d.RemainingMinutes != 1 {
			t.Fatalf("got %+v, want cooling with 1 minute", d)
		}
	})

	t.Run("full window just elapsed reopens with reset", func(t *testing.T) {
		u := &domain.User{LoginAttempts: 5, LastLoginAttempt: attemptAt(15 * time.Minute)}
		d := policy.Evaluate(u, now)
		if d.State != LockoutOpen || !d.ResetCounter {
			t.Fatalf("got %+v, want open with reset", d)
		}
	})

	t.Run("missing last attempt timestamp reopens", func(t *testing.T) {
		u := &domain.User{LoginAttempts: 7}
		d := policy.Evaluate(u, now)
		if d.State != LockoutOpen || !d.ResetCounter {
			t.Fatalf("got %+v, want open with reset", d)
		}
	})
}
