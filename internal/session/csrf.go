package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// CSRFToken returns the session's anti-forgery token, generating a
// 256-bit random one if the session does not have one yet. The token
// lives for the whole session; it is not rotated per request.
func (s *Session) CSRFToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.csrfToken == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			panic("session: rand.Read: " + err.Error())
		}
		s.csrfToken = hex.EncodeToString(b)
	}
	return s.csrfToken
}

// ValidateCSRF reports whether candidate exactly matches the session's
// current token. False when the session has no token or candidate is
// empty. Comparison is constant time.
func (s *Session) ValidateCSRF(candidate string) bool {
	s.mu.Lock()
	token := s.csrfToken
	s.mu.Unlock()
	if token == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}
