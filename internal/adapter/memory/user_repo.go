package memory

import (
	"context"
	"time"

	"mytasker/internal/domain"
)

// UserRepo implements domain.UserRepository on a DB.
type UserRepo struct {
	db *DB
}

// NewUserRepo wraps a DB as a UserRepository.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

// FindByEmail retrieves a user by email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// FindByID retrieves a user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// Create inserts a new account.
func (r *UserRepo) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == nu.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.db.userIDCounter++
	u := &domain.User{
		ID:                r.db.userIDCounter,
		Name:              nu.Name,
		Email:             nu.Email,
		PasswordHash:      nu.PasswordHash,
		Role:              nu.Role,
		RetentionApproved: nu.RetentionApproved,
		CreatedAt:         r.db.now(),
	}
	if nu.RetentionApproved {
		t := r.db.now()
		u.RetentionDate = &t
	}
	r.db.users = append(r.db.users, u)
	cp := *u
	return &cp, nil
}

// UpdateProfile changes the user's name and email.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.users {
		if other.Email == email && other.ID != id {
			return domain.ErrDuplicateEmail
		}
	}
	if u := r.db.findUserLocked(id); u != nil {
		u.Name = name
		u.Email = email
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		u.PasswordHash = hash
	}
	return nil
}

// RecordLoginSuccess resets the attempt counter and stamps the login
// timestamps.
func (r *UserRepo) RecordLoginSuccess(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		now := r.db.now()
		u.LoginAttempts = 0
		u.LastLoginAttempt = nil
		u.LastLogin = &now
		u.LastActivity = &now
	}
	return nil
}

// RecordLoginFailure increments the attempt counter and returns the
// post-increment count.
func (r *UserRepo) RecordLoginFailure(ctx context.Context, id int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := r.db.findUserLocked(id)
	if u == nil {
		return 0, nil
	}
	now := r.db.now()
	u.LoginAttempts++
	u.LastLoginAttempt = &now
	return u.LoginAttempts, nil
}

// ResetLoginAttempts zeroes the attempt counter.
func (r *UserRepo) ResetLoginAttempts(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		u.LoginAttempts = 0
		u.LastLoginAttempt = nil
	}
	return nil
}

// TouchActivity stamps last_activity.
func (r *UserRepo) TouchActivity(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		now := r.db.now()
		u.LastActivity = &now
	}
	return nil
}

// SetRole changes the user's role.
func (r *UserRepo) SetRole(ctx context.Context, id int64, role domain.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		u.Role = role
	}
	return nil
}

// SetLocked applies or clears the hard lock.
func (r *UserRepo) SetLocked(ctx context.Context, id int64, locked bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		u.AccountLocked = locked
	}
	return nil
}

// SetRetentionConsent records the user's retention decision.
func (r *UserRepo) SetRetentionConsent(ctx context.Context, id int64, approved bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.findUserLocked(id); u != nil {
		now := r.db.now()
		u.RetentionApproved = approved
		u.RetentionDate = &now
	}
	return nil
}

// Delete removes the user and all dependent records.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.deleteUserLocked(id)
	return nil
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, *u)
	}
	sortUsersNewestFirst(out)
	return out, nil
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

// FindInactiveSince returns consenting users whose last activity, or
// creation time when they never logged in, predates cutoff.
func (r *UserRepo) FindInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.User
	for _, u := range r.db.users {
		if !u.RetentionApproved {
			continue
		}
		last := u.CreatedAt
		if u.LastActivity != nil {
			last = *u.LastActivity
		}
		if last.Before(cutoff) {
			out = append(out, *u)
		}
	}
	return out, nil
}
