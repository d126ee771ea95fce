// Package session owns the server-side session lifecycle: creation,
// identity binding, fixation-resistant ID rotation, idle-timeout
// detection, and destruction. Session state is held in-process and keyed
// by an unguessable identifier delivered via cookie.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"mytasker/internal/domain"
)

// Session is the server-held state for one browsing context. At most one
// identity is bound to a session at a time. All identity state lives
// behind the lock; concurrent requests share one Session.
type Session struct {
	mu sync.Mutex

	id string

	userID int64
	name   string
	email  string
	role   domain.Role

	lastActivity time.Time
	// lastStoreSync throttles persistence of last_activity to the
	// credential store.
	lastStoreSync time.Time

	csrfToken string
}

// ID returns the current session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Bound reports whether an identity is bound to the session.
func (s *Session) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID != 0
}

// UserID returns the bound user's ID, or 0 for an anonymous session.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Name returns the bound user's display name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Email returns the bound user's email.
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Role returns the bound user's role.
func (s *Session) Role() domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetIdentity updates the session's display fields after a profile
// change so they stay in step with the store.
func (s *Session) SetIdentity(name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.email = email
}

// CacheRole records the user's role in the session.
func (s *Session) CacheRole(role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

// clearLocked resets all session state. Caller holds s.mu.
func (s *Session) clearLocked() {
	s.userID = 0
	s.name = ""
	s.email = ""
	s.role = ""
	s.lastActivity = time.Time{}
	s.lastStoreSync = time.Time{}
	s.csrfToken = ""
}

// Store holds live sessions keyed by identifier.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session for id, or nil if none exists.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) create() *Session {
	s := &Session{id: newID()}
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// rotate issues a fresh identifier for s and discards the old one. The
// old identifier can never resolve to this session again.
func (st *Store) rotate(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(st.sessions, s.id)
	s.id = newID()
	st.sessions[s.id] = s
}

func (st *Store) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// newID returns a 256-bit random identifier.
func newID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the process cannot do anything
		// security-relevant; fail loudly.
		panic("session: rand.Read: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
