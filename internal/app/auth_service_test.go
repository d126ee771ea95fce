package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mytasker/internal/adapter/memory"
	"mytasker/internal/audit"
	"mytasker/internal/domain"
	"mytasker/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authFixture struct {
	svc      *AuthService
	db       *memory.DB
	users    *memory.UserRepo
	sessions *session.Manager
	clock    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		db:    memory.New(),
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.users = memory.NewUserRepo(f.db)
	now := func() time.Time { return f.clock }
	f.db.SetClock(now)
	f.sessions = session.NewManager(f.users, discardLogger(), session.Config{})
	f.svc = NewAuthService(f.users, f.sessions, audit.NoOpSink{}, discardLogger())
	f.svc.now = now
	return f
}

func (f *authFixture) createUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u, err := f.users.Create(context.Background(), domain.NewUser{
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func (f *authFixture) startSession() *session.Session {
	return f.sessions.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func (f *authFixture) login(sess *session.Session, email, password string) Result {
	return f.svc.Login(context.Background(), httptest.NewRecorder(), sess, email, password)
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	u := f.createUser(t, "alice@example.com", "Str0ng!pass")

	sess := f.startSession()
	oldID := sess.ID()

	res := f.login(sess, "alice@example.com", "Str0ng!pass")
	if !res.OK {
		t.Fatalf("login failed: %q", res.Message)
	}
	if !sess.Bound() || sess.UserID() != u.ID {
		t.Errorf("session not bound to user %d", u.ID)
	}
	if sess.ID() == oldID {
		t.Error("session identifier was not rotated on login")
	}
	if f.sessions.Lookup(oldID) != nil {
		t.Error("pre-login session identifier still resolves")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")

	res := f.login(f.startSession(), "alice@example.com", "wrong")
	if res.OK || res.Message != MsgInvalidCredentials {
		t.Fatalf("got %+v, want %q", res, MsgInvalidCredentials)
	}
}

func TestAuthService_Login_UnknownEmailSameMessage(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(f.startSession(), "nobody@example.com", "whatever")
	if res.OK || res.Message != MsgInvalidCredentials {
		t.Fatalf("got %+v, want %q", res, MsgInvalidCredentials)
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(f.startSession(), "", "")
	if res.Message != MsgEmailPasswordRequired {
		t.Fatalf("got %q, want %q", res.Message, MsgEmailPasswordRequired)
	}
}

func TestAuthService_Login_LockoutSequence(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")
	sess := f.startSession()

	// Four failures report plain invalid credentials.
	for i := 1; i <= 4; i++ {
		res := f.login(sess, "alice@example.com", "wrong")
		if res.Message != MsgInvalidCredentials {
			t.Fatalf("attempt %d: got %q, want %q", i, res.Message, MsgInvalidCredentials)
		}
	}

	// The fifth failure crosses the ceiling and reports the lock.
	res := f.login(sess, "alice@example.com", "wrong")
	if res.Message != MsgLockoutTriggered {
		t.Fatalf("attempt 5: got %q, want %q", res.Message, MsgLockoutTriggered)
	}

	// While cooling, even the correct password is rejected with the
	// remaining wait time.
	res = f.login(sess, "alice@example.com", "Str0ng!pass")
	want := fmt.Sprintf(MsgLockoutCooling, 15)
	if res.Message != want {
		t.Fatalf("cooling: got %q, want %q", res.Message, want)
	}

	// Partway through the window the reported wait shrinks.
	f.clock = f.clock.Add(10 * time.Minute)
	res = f.login(sess, "alice@example.com", "Str0ng!pass")
	want = fmt.Sprintf(MsgLockoutCooling, 5)
	if res.Message != want {
		t.Fatalf("cooling at 10m: got %q, want %q", res.Message, want)
	}

	// Once the window has elapsed the counter resets and the correct
	// password works again.
	f.clock = f.clock.Add(5 * time.Minute)
	res = f.login(sess, "alice@example.com", "Str0ng!pass")
	if !res.OK {
		t.Fatalf("after window: login failed: %q", res.Message)
	}

	u, err := f.users.FindByEmail(context.Background(), "alice@example.com")
	if err != nil || u == nil {
		t.Fatal("user lookup failed")
	}
	if u.LoginAttempts != 0 {
		t.Errorf("attempts = %d after successful login, want 0", u.LoginAttempts)
	}
}

func TestAuthService_Login_WindowExpiryResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")
	sess := f.startSession()

	for i := 0; i < 5; i++ {
		f.login(sess, "alice@example.com", "wrong")
	}
	f.clock = f.clock.Add(15 * time.Minute)

	// A wrong password after the window counts as attempt 1, not 6.
	res := f.login(sess, "alice@example.com", "wrong")
	if res.Message != MsgInvalidCredentials {
		t.Fatalf("got %q, want %q", res.Message, MsgInvalidCredentials)
	}
	u, _ := f.users.FindByEmail(context.Background(), "alice@example.com")
	if u.LoginAttempts != 1 {
		t.Errorf("attempts = %d, want 1", u.LoginAttempts)
	}
}

func TestAuthService_Login_HardLocked(t *testing.T) {
	f := newAuthFixture(t)
	u := f.createUser(t, "alice@example.com", "Str0ng!pass")
	if err := f.users.SetLocked(context.Background(), u.ID, true); err != nil {
		t.Fatal(err)
	}

	res := f.login(f.startSession(), "alice@example.com", "Str0ng!pass")
	if res.Message != MsgAccountHardLocked {
		t.Fatalf("got %q, want %q", res.Message, MsgAccountHardLocked)
	}
}

// failingUserRepo wraps the embedded repository and fails FindByEmail.
type failingUserRepo struct {
	domain.UserRepository
}

func (failingUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestAuthService_Login_StoreError(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.users = failingUserRepo{f.users}

	res := f.login(f.startSession(), "alice@example.com", "whatever")
	if res.Message != MsgStoreError {
		t.Fatalf("got %q, want %q", res.Message, MsgStoreError)
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)

	id, res := f.svc.Register(context.Background(), "Alice", "alice@example.com", "Str0ng!pass", true)
	if !res.OK {
		t.Fatalf("register failed: %q", res.Message)
	}
	if id == 0 {
		t.Fatal("register returned id 0")
	}

	u, err := f.users.FindByID(context.Background(), id)
	if err != nil || u == nil {
		t.Fatal("registered user not found")
	}
	if u.Role != domain.RoleUser {
		t.Errorf("role = %q, want %q", u.Role, domain.RoleUser)
	}
	if !u.RetentionApproved {
		t.Error("retention consent not stored")
	}
	if u.PasswordHash == "Str0ng!pass" {
		t.Error("password stored in clear")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Str0ng!pass")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestAuthService_Register_ValidationMessages(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		want     string
	}{
		{
			name: "everything missing",
			want: "Name is required, Email is required, Password is required",
		},
		{
			name:     "bad email",
			userName: "Alice",
			email:    "not-an-email",
			password: "Str0ng!pass",
			want:     "Please enter a valid email address",
		},
		{
			name:     "name too long",
			userName: strings.Repeat("a", 101),
			email:    "alice@example.com",
			password: "Str0ng!pass",
			want:     "Name must be 100 characters or less",
		},
		{
			name:     "weak password reports every rule",
			userName: "Alice",
			email:    "alice@example.com",
			password: "short",
			want: RulePasswordLength + ", " + RulePasswordUpper + ", " +
				RulePasswordDigit + ", " + RulePasswordSpecial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := f.svc.Register(context.Background(), tt.userName, tt.email, tt.password, false)
			if res.OK {
				t.Fatal("register unexpectedly succeeded")
			}
			if res.Message != tt.want {
				t.Errorf("message = %q, want %q", res.Message, tt.want)
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")

	_, res := f.svc.Register(context.Background(), "Other", "alice@example.com", "Str0ng!pass", false)
	if res.Message != MsgEmailTaken {
		t.Fatalf("got %q, want %q", res.Message, MsgEmailTaken)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.createUser(t, "alice@example.com", "Str0ng!pass")
	ctx := context.Background()

	res := f.svc.ChangePassword(ctx, u.ID, "wrong", "N3w!password")
	if res.Message != MsgCurrentPassword {
		t.Fatalf("got %q, want %q", res.Message, MsgCurrentPassword)
	}

	res = f.svc.ChangePassword(ctx, u.ID, "Str0ng!pass", "weak")
	if res.OK {
		t.Fatal("weak new password accepted")
	}

	res = f.svc.ChangePassword(ctx, u.ID, "Str0ng!pass", "N3w!password")
	if !res.OK {
		t.Fatalf("change failed: %q", res.Message)
	}

	after, _ := f.users.FindByID(ctx, u.ID)
	if bcrypt.CompareHashAndPassword([]byte(after.PasswordHash), []byte("N3w!password")) != nil {
		t.Error("new password not stored")
	}
}

func TestAuthService_UpdateProfile_EmailTaken(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")
	bob := f.createUser(t, "bob@example.com", "Str0ng!pass")

	res := f.svc.UpdateProfile(context.Background(), bob.ID, "Bob", "alice@example.com")
	if res.Message != MsgEmailTaken {
		t.Fatalf("got %q, want %q", res.Message, MsgEmailTaken)
	}

	// Keeping your own email is not a conflict.
	res = f.svc.UpdateProfile(context.Background(), bob.ID, "Robert", "bob@example.com")
	if !res.OK {
		t.Fatalf("self update failed: %q", res.Message)
	}
}

func TestAuthService_DeleteAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")
	sess := f.startSession()
	f.login(sess, "alice@example.com", "Str0ng!pass")

	res := f.svc.DeleteAccount(context.Background(), httptest.NewRecorder(), sess, "wrong")
	if res.Message != MsgPasswordIncorrect {
		t.Fatalf("got %q, want %q", res.Message, MsgPasswordIncorrect)
	}

	res = f.svc.DeleteAccount(context.Background(), httptest.NewRecorder(), sess, "Str0ng!pass")
	if !res.OK {
		t.Fatalf("delete failed: %q", res.Message)
	}
	if sess.Bound() {
		t.Error("session still bound after account deletion")
	}
	u, _ := f.users.FindByEmail(context.Background(), "alice@example.com")
	if u != nil {
		t.Error("account still present after deletion")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "alice@example.com", "Str0ng!pass")
	sess := f.startSession()
	f.login(sess, "alice@example.com", "Str0ng!pass")
	id := sess.ID()

	f.svc.Logout(context.Background(), httptest.NewRecorder(), sess)
	if sess.Bound() {
		t.Error("session still bound after logout")
	}
	if f.sessions.Lookup(id) != nil {
		t.Error("session identifier still resolves after logout")
	}
}
