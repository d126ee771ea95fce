package app

import (
	"time"

	"mytasker/internal/domain"
)

// LockoutPolicy decides whether a login attempt may proceed based on the
// account's failed-attempt counter. Counters are per account, not per
// IP: the goal is protecting individual accounts, not network-level
// abuse prevention.
type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultLockoutPolicy returns the product policy: five attempts, then a
// fifteen-minute cooldown.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: 5, Window: 15 * time.Minute}
}

// LockoutState classifies an account for the purposes of a login attempt.
type LockoutState int

const (
	// LockoutOpen allows the attempt to proceed to the password check.
	LockoutOpen LockoutState = iota
	// LockoutCooling rejects the attempt without touching the password
	// hash, so expiry of the window is not observable through timing.
	LockoutCooling
	// LockoutHardLocked rejects until an administrator clears the lock.
	LockoutHardLocked
)

// LockoutDecision is the outcome of evaluating the policy for a user.
type LockoutDecision struct {
	State LockoutState
	// RemainingMinutes is set when State is LockoutCooling.
	RemainingMinutes int
	// ResetCounter is set when the cooldown window has elapsed; the
	// caller must reset the stored counter before proceeding.
	ResetCounter bool
}

// Evaluate classifies the user at the given instant.
func (p LockoutPolicy) Evaluate(u *domain.User, now time.Time) LockoutDecision {
	if u.AccountLocked {
		return LockoutDecision{State: LockoutHardLocked}
	}
	if u.LoginAttempts < p.MaxAttempts {
		return LockoutDecision{State: LockoutOpen}
	}

	// Counter at or above the ceiling: cooling unless the window has
	// fully elapsed since the last attempt.
	var elapsed time.Duration
	if u.LastLoginAttempt != nil {
		elapsed = now.Sub(*u.LastLoginAttempt)
	} else {
		elapsed = p.Window
	}
	if elapsed < p.Window {
		remaining := p.Window - elapsed
		minutes := int((remaining + time.Minute - 1) / time.Minute)
		return LockoutDecision{State: LockoutCooling, RemainingMinutes: minutes}
	}
	return LockoutDecision{State: LockoutOpen, ResetCounter: true}
}
