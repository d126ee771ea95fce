package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mytasker/internal/domain"
)

// stubUsers overrides TouchActivity; the Manager never calls anything
// else on the repository.
type stubUsers struct {
	domain.UserRepository
	touchFn func(ctx context.Context, id int64) error
	touched []int64
}

func (s *stubUsers) TouchActivity(ctx context.Context, id int64) error {
	s.touched = append(s.touched, id)
	if s.touchFn != nil {
		return s.touchFn(ctx, id)
	}
	return nil
}

func newTestManager(users *stubUsers) (*Manager, *time.Time) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(users, logger, Config{})
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func requestWithCookie(name, value string) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: name, Value: value})
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestManager_Start(t *testing.T) {
	m, _ := newTestManager(&stubUsers{})

	w := httptest.NewRecorder()
	s := m.Start(w, httptest.NewRequest("GET", "/", nil))
	if s == nil || s.ID() == "" {
		t.Fatal("no session created")
	}

	c := sessionCookie(t, w)
	if c.Value != s.ID() {
		t.Errorf("cookie value %q, session id %q", c.Value, s.ID())
	}
	if !c.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	// A request carrying the cookie resolves to the same session.
	again := m.Start(httptest.NewRecorder(), requestWithCookie(c.Name, c.Value))
	if again != s {
		t.Error("cookie did not resolve to the existing session")
	}

	// An unknown identifier yields a fresh session, never an error.
	fresh := m.Start(httptest.NewRecorder(), requestWithCookie(c.Name, "bogus"))
	if fresh == s || fresh.ID() == s.ID() {
		t.Error("bogus cookie resolved to an existing session")
	}
}

func TestManager_Establish_RotatesID(t *testing.T) {
	m, _ := newTestManager(&stubUsers{})

	w := httptest.NewRecorder()
	s := m.Start(w, httptest.NewRequest("GET", "/", nil))
	oldID := s.ID()

	u := &domain.User{ID: 7, Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin}
	ew := httptest.NewRecorder()
	m.Establish(ew, s, u)

	if s.ID() == oldID {
		t.Fatal("identifier not rotated on identity binding")
	}
	if m.Lookup(oldID) != nil {
		t.Error("old identifier still resolves after rotation")
	}
	if m.Lookup(s.ID()) != s {
		t.Error("new identifier does not resolve")
	}
	if c := sessionCookie(t, ew); c.Value != s.ID() {
		t.Error("cookie not reissued with the rotated identifier")
	}
	if s.UserID() != 7 || s.Role() != domain.RoleAdmin {
		t.Errorf("identity not bound: id=%d role=%q", s.UserID(), s.Role())
	}
}

func TestManager_Establish_DefaultsRole(t *testing.T) {
	m, _ := newTestManager(&stubUsers{})
	s := m.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	m.Establish(httptest.NewRecorder(), s, &domain.User{ID: 1})
	if s.Role() != domain.RoleUser {
		t.Errorf("role = %q, want %q", s.Role(), domain.RoleUser)
	}
}

func TestManager_IsActive_IdleTimeout(t *testing.T) {
	m, clock := newTestManager(&stubUsers{})
	ctx := context.Background()

	s := m.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if m.IsActive(ctx, httptest.NewRecorder(), s) {
		t.Fatal("anonymous session reported active")
	}

	m.Establish(httptest.NewRecorder(), s, &domain.User{ID: 1})
	id := s.ID()

	// One second short of the timeout the session survives.
	*clock = clock.Add(DefaultIdleTimeout - time.Second)
	if !m.IsActive(ctx, httptest.NewRecorder(), s) {
		t.Fatal("session destroyed before the idle timeout")
	}

	// The check refreshed the activity clock, so the next full timeout
	// counts from here.
	*clock = clock.Add(DefaultIdleTimeout)
	w := httptest.NewRecorder()
	if m.IsActive(ctx, w, s) {
		t.Fatal("session survived the idle timeout")
	}
	if s.Bound() {
		t.Error("identity still bound after timeout destruction")
	}
	if m.Lookup(id) != nil {
		t.Error("identifier still resolves after timeout destruction")
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 {
		t.Error("cookie not expired on timeout destruction")
	}
}

func TestManager_IsActive_ActivitySyncThrottled(t *testing.T) {
	users := &stubUsers{}
	m, clock := newTestManager(users)
	ctx := context.Background()

	s := m.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	m.Establish(httptest.NewRecorder(), s, &domain.User{ID: 42})

	// Checks inside the sync interval do not hit the store.
	*clock = clock.Add(time.Minute)
	m.IsActive(ctx, httptest.NewRecorder(), s)
	*clock = clock.Add(time.Minute)
	m.IsActive(ctx, httptest.NewRecorder(), s)
	if len(users.touched) != 0 {
		t.Fatalf("store touched %d times inside the interval", len(users.touched))
	}

	// Crossing the interval persists once and resets the throttle.
	*clock = clock.Add(DefaultSyncInterval)
	m.IsActive(ctx, httptest.NewRecorder(), s)
	if len(users.touched) != 1 || users.touched[0] != 42 {
		t.Fatalf("touched = %v, want one sync for user 42", users.touched)
	}
	*clock = clock.Add(time.Minute)
	m.IsActive(ctx, httptest.NewRecorder(), s)
	if len(users.touched) != 1 {
		t.Errorf("throttle not reset after sync: %v", users.touched)
	}
}

func TestManager_IsActive_SyncFailureIsNotFatal(t *testing.T) {
	users := &stubUsers{touchFn: func(context.Context, int64) error {
		return errors.New("store down")
	}}
	m, clock := newTestManager(users)

	s := m.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	m.Establish(httptest.NewRecorder(), s, &domain.User{ID: 1})

	*clock = clock.Add(DefaultSyncInterval)
	if !m.IsActive(context.Background(), httptest.NewRecorder(), s) {
		t.Error("store failure turned into a logout")
	}
}

func TestManager_Destroy(t *testing.T) {
	m, _ := newTestManager(&stubUsers{})

	s := m.Start(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	m.Establish(httptest.NewRecorder(), s, &domain.User{ID: 1})
	id := s.ID()

	w := httptest.NewRecorder()
	m.Destroy(w, s)

	if s.Bound() {
		t.Error("identity still bound after destroy")
	}
	if m.Lookup(id) != nil {
		t.Error("identifier still resolves after destroy")
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 {
		t.Error("cookie not expired on destroy")
	}

	// Nil writer and nil session are both tolerated.
	m.Destroy(nil, s)
	m.Destroy(httptest.NewRecorder(), nil)
}
