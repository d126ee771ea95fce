// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail indicates that the email address is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Role is a user's access level.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to the administrative surfaces.
	RoleAdmin Role = "admin"
)

// User represents a registered account in the system.
type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	LoginAttempts     int
	LastLoginAttempt  *time.Time
	AccountLocked     bool
	LastLogin         *time.Time
	LastActivity      *time.Time
	RetentionApproved bool
	RetentionDate     *time.Time
	CreatedAt         time.Time
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	RetentionApproved bool
}

// UserRepository defines the port for user persistence operations.
// Lookup methods return (nil, nil) when no matching row exists.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// Create inserts a new account and returns it with the assigned ID.
	// Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, nu NewUser) (*User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// RecordLoginSuccess resets the attempt counter, clears the last-attempt
	// timestamp, and stamps last_login and last_activity.
	RecordLoginSuccess(ctx context.Context, id int64) error
	// RecordLoginFailure atomically increments the attempt counter, stamps
	// the last-attempt timestamp, and returns the post-increment count.
	RecordLoginFailure(ctx context.Context, id int64) (int, error)
	ResetLoginAttempts(ctx context.Context, id int64) error
	TouchActivity(ctx context.Context, id int64) error
	SetRole(ctx context.Context, id int64, role Role) error
	SetLocked(ctx context.Context, id int64, locked bool) error
	SetRetentionConsent(ctx context.Context, id int64, approved bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
	// FindInactiveSince returns users whose last activity predates cutoff
	// and who have approved the data retention policy.
	FindInactiveSince(ctx context.Context, cutoff time.Time) ([]User, error)
}
