package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"mytasker/internal/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, login_attempts,
	last_login_attempt, account_locked, last_login, last_activity,
	retention_approved, retention_date, created_at`

// UserRepo implements domain.UserRepository on PostgreSQL.
type UserRepo struct {
	db *DB
}

// NewUserRepo wraps a DB as a UserRepository.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u             domain.User
		lastAttempt   sql.NullTime
		lastLogin     sql.NullTime
		lastActivity  sql.NullTime
		retentionDate sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.LoginAttempts, &lastAttempt, &u.AccountLocked, &lastLogin,
		&lastActivity, &u.RetentionApproved, &retentionDate, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastAttempt.Valid {
		u.LastLoginAttempt = &lastAttempt.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if lastActivity.Valid {
		u.LastActivity = &lastActivity.Time
	}
	if retentionDate.Valid {
		u.RetentionDate = &retentionDate.Time
	}
	return &u, nil
}

// FindByEmail retrieves a user by email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// FindByID retrieves a user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// Create inserts a new account.
func (r *UserRepo) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	var retentionDate *time.Time
	if nu.RetentionApproved {
		t := time.Now()
		retentionDate = &t
	}
	u, err := scanUser(r.db.sql.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, retention_approved, retention_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		nu.Name, nu.Email, nu.PasswordHash, nu.Role, nu.RetentionApproved, retentionDate))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the user's name and email.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET name = $1, email = $2 WHERE id = $3", name, email, id)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", hash, id)
	return err
}

// RecordLoginSuccess resets the attempt counter and stamps last_login
// and last_activity.
func (r *UserRepo) RecordLoginSuccess(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx,
		`UPDATE users SET login_attempts = 0, last_login_attempt = NULL,
		 last_login = NOW(), last_activity = NOW() WHERE id = $1`, id)
	return err
}

// RecordLoginFailure increments the attempt counter in a single
// statement so concurrent failures cannot lose an increment, and
// returns the post-increment count.
func (r *UserRepo) RecordLoginFailure(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx,
		`UPDATE users SET login_attempts = login_attempts + 1,
		 last_login_attempt = NOW() WHERE id = $1 RETURNING login_attempts`, id).Scan(&count)
	return count, err
}

// ResetLoginAttempts zeroes the attempt counter.
func (r *UserRepo) ResetLoginAttempts(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET login_attempts = 0, last_login_attempt = NULL WHERE id = $1", id)
	return err
}

// TouchActivity stamps last_activity.
func (r *UserRepo) TouchActivity(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET last_activity = NOW() WHERE id = $1", id)
	return err
}

// SetRole changes the user's role.
func (r *UserRepo) SetRole(ctx context.Context, id int64, role domain.Role) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET role = $1 WHERE id = $2", role, id)
	return err
}

// SetLocked applies or clears the hard lock.
func (r *UserRepo) SetLocked(ctx context.Context, id int64, locked bool) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET account_locked = $1 WHERE id = $2", locked, id)
	return err
}

// SetRetentionConsent records the user's retention decision and the
// moment it was made.
func (r *UserRepo) SetRetentionConsent(ctx context.Context, id int64, approved bool) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET retention_approved = $1, retention_date = NOW() WHERE id = $2",
		approved, id)
	return err
}

// Delete removes the user; dependent rows go with it via FK cascade.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// FindInactiveSince returns consenting users whose last activity
// predates cutoff. Accounts that never logged in are judged by their
// creation time.
func (r *UserRepo) FindInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE retention_approved = TRUE
		   AND COALESCE(last_activity, created_at) < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
