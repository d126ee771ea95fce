package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
	"mytasker/internal/session"
)

// AuthService handles registration, login with brute-force protection,
// and the account-level operations that require password verification.
type AuthService struct {
	users    domain.UserRepository
	sessions *session.Manager
	policy   PasswordPolicy
	lockout  LockoutPolicy
	audit    audit.Sink
	logger   *slog.Logger

	now func() time.Time
}

// NewAuthService creates an AuthService with the default password and
// lockout policies.
func NewAuthService(users domain.UserRepository, sessions *session.Manager, sink audit.Sink, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		policy:   PasswordPolicy{},
		lockout:  DefaultLockoutPolicy(),
		audit:    sink,
		logger:   logger,
		now:      time.Now,
	}
}

// Register validates input, hashes the password, and creates the account.
// All validation problems are reported at once, joined with ", ".
func (s *AuthService) Register(ctx context.Context, name, email, password string, retentionApproved bool) (int64, Result) {
	var errs []string

	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "Name is required")
	} else if len(name) > 100 {
		errs = append(errs, "Name must be 100 characters or less")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs = append(errs, "Email is required")
	} else if !validEmail(email) {
		errs = append(errs, "Please enter a valid email address")
	} else if len(email) > 150 {
		errs = append(errs, "Email must be 150 characters or less")
	}

	if password == "" {
		errs = append(errs, "Password is required")
	} else {
		errs = append(errs, s.policy.Validate(password)...)
	}

	if len(errs) > 0 {
		return 0, failure(strings.Join(errs, ", "))
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		return 0, failure(MsgStoreError)
	}

	u, err := s.users.Create(ctx, domain.NewUser{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Role:              domain.RoleUser,
		RetentionApproved: retentionApproved,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return 0, failure(MsgEmailTaken)
		}
		s.logger.Error("user create failed", "error", err)
		return 0, failure(MsgStoreError)
	}

	s.audit.Record(ctx, audit.Event{
		UserID:     u.ID,
		Action:     "register",
		Resource:   "user",
		ResourceID: strconv.FormatInt(u.ID, 10),
		Details:    "User registration",
	})
	return u.ID, success()
}

// Login authenticates the user and, on success, binds the identity into
// the given session with a rotated identifier. The returned message is
// exactly what the user should see.
func (s *AuthService) Login(ctx context.Context, w http.ResponseWriter, sess *session.Session, email, password string) Result {
	if email == "" || password == "" {
		return failure(MsgEmailPasswordRequired)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("login lookup failed", "error", err)
		return failure(MsgStoreError)
	}
	if u == nil {
		// Unknown account gets the same message as a wrong password.
		return failure(MsgInvalidCredentials)
	}

	if u.AccountLocked {
		s.auditLoginFailure(ctx, u.ID, "Login rejected: account hard-locked")
		return failure(MsgAccountHardLocked)
	}

	decision := s.lockout.Evaluate(u, s.now())
	switch {
	case decision.State == LockoutCooling:
		// No password check while cooling: expiry of the window must
		// not be observable through response timing.
		s.auditLoginFailure(ctx, u.ID, "Login rejected: lockout window active")
		return failure(fmt.Sprintf(MsgLockoutCooling, decision.RemainingMinutes))
	case decision.ResetCounter:
		if err := s.users.ResetLoginAttempts(ctx, u.ID); err != nil {
			s.logger.Error("attempt reset failed", "user_id", u.ID, "error", err)
			return failure(MsgStoreError)
		}
		u.LoginAttempts = 0
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		count, err := s.users.RecordLoginFailure(ctx, u.ID)
		if err != nil {
			s.logger.Error("failure record failed", "user_id", u.ID, "error", err)
			return failure(MsgStoreError)
		}
		s.auditLoginFailure(ctx, u.ID, fmt.Sprintf("Failed login attempt (%d)", count))
		if count >= s.lockout.MaxAttempts {
			// The failure that crosses the ceiling is reported
			// distinctly from an ordinary mismatch.
			return failure(MsgLockoutTriggered)
		}
		return failure(MsgInvalidCredentials)
	}

	// Rotation and cookie issuance happen here, before any body is
	// written and before the follow-up store writes.
	s.sessions.Establish(w, sess, u)

	if err := s.users.RecordLoginSuccess(ctx, u.ID); err != nil {
		// The session is already established; losing this write only
		// leaves the stored counters stale.
		s.logger.Error("success record failed", "user_id", u.ID, "error", err)
	}

	s.audit.Record(ctx, audit.Event{
		UserID:     u.ID,
		Action:     "login",
		Resource:   "user",
		ResourceID: strconv.FormatInt(u.ID, 10),
		Details:    "User login successful",
	})
	return success()
}

// Logout records the event and destroys the session.
func (s *AuthService) Logout(ctx context.Context, w http.ResponseWriter, sess *session.Session) {
	if sess != nil && sess.Bound() {
		userID := sess.UserID()
		s.audit.Record(ctx, audit.Event{
			UserID:     userID,
			Action:     "logout",
			Resource:   "user",
			ResourceID: strconv.FormatInt(userID, 10),
			Details:    "User logout",
		})
	}
	s.sessions.Destroy(w, sess)
}

// ChangePassword verifies the current password and applies the policy to
// the new one before updating the stored hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, newPassword string) Result {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("password change lookup failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	if u == nil {
		return failure(MsgStoreError)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return failure(MsgCurrentPassword)
	}
	if violations := s.policy.Validate(newPassword); len(violations) > 0 {
		return failure(strings.Join(violations, ", "))
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		return failure(MsgStoreError)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.logger.Error("password update failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "change_password",
		Resource:   "user",
		ResourceID: strconv.FormatInt(userID, 10),
		Details:    "Password changed",
	})
	return success()
}

// UpdateProfile changes the user's display name and email after
// re-checking email uniqueness.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, email string) Result {
	var errs []string
	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "Name is required")
	} else if len(name) > 100 {
		errs = append(errs, "Name must be 100 characters or less")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		errs = append(errs, "Email is required")
	} else if !validEmail(email) {
		errs = append(errs, "Please enter a valid email address")
	} else if len(email) > 150 {
		errs = append(errs, "Email must be 150 characters or less")
	}
	if len(errs) > 0 {
		return failure(strings.Join(errs, ", "))
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("profile email check failed", "error", err)
		return failure(MsgStoreError)
	}
	if existing != nil && existing.ID != userID {
		return failure(MsgEmailTaken)
	}

	if err := s.users.UpdateProfile(ctx, userID, name, email); err != nil {
		s.logger.Error("profile update failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "update_profile",
		Resource:   "user",
		ResourceID: strconv.FormatInt(userID, 10),
		Details:    "Profile updated",
	})
	return success()
}

// SetRetentionConsent records or withdraws the user's data retention
// approval.
func (s *AuthService) SetRetentionConsent(ctx context.Context, userID int64, approved bool) Result {
	if err := s.users.SetRetentionConsent(ctx, userID, approved); err != nil {
		s.logger.Error("consent update failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	details := "Data retention consent withdrawn"
	if approved {
		details = "Data retention consent given"
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "PDPA_CONSENT",
		Resource:   "user",
		ResourceID: strconv.FormatInt(userID, 10),
		Details:    details,
	})
	return success()
}

// DeleteAccount removes the user after password re-confirmation and
// destroys the session. Dependent records are removed by the store.
func (s *AuthService) DeleteAccount(ctx context.Context, w http.ResponseWriter, sess *session.Session, password string) Result {
	userID := sess.UserID()
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("account delete lookup failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	if u == nil {
		return failure(MsgStoreError)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return failure(MsgPasswordIncorrect)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error("account delete failed", "user_id", userID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "delete_account",
		Resource:   "user",
		ResourceID: strconv.FormatInt(userID, 10),
		Details:    "Account deleted by user",
	})
	s.sessions.Destroy(w, sess)
	return success()
}

func (s *AuthService) auditLoginFailure(ctx context.Context, userID int64, details string) {
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "login_failed",
		Resource:   "user",
		ResourceID: strconv.FormatInt(userID, 10),
		Details:    details,
	})
}

// HashPassword produces a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
