package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"mytasker/internal/domain"
	"mytasker/internal/session"
)

// SSO handles login via an OpenID Connect provider. Accounts are
// auto-provisioned by email on first login; SSO users carry a random
// unusable password hash so the identity provider stays the only way in.
type SSO struct {
	provider *oidc.Provider
	oauth2   oauth2.Config
	users    domain.UserRepository
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSSO discovers the provider configuration from the issuer URL.
func NewSSO(ctx context.Context, issuer, clientID, clientSecret, redirectURL string, users domain.UserRepository, sessions *session.Manager, logger *slog.Logger) (*SSO, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &SSO{
		provider: provider,
		oauth2: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		users:    users,
		sessions: sessions,
		logger:   logger,
	}, nil
}

func (s *SSO) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oauth2.AuthCodeURL(state), http.StatusFound)
}

func (s *SSO) handleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeMessage(w, http.StatusBadRequest, "Invalid state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oauth2.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.logger.Error("sso exchange failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "SSO login failed")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "SSO login failed")
		return
	}
	idToken, err := s.provider.Verifier(&oidc.Config{ClientID: s.oauth2.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		s.logger.Error("sso token verify failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "SSO login failed")
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		writeMessage(w, http.StatusInternalServerError, "SSO login failed")
		return
	}

	u, err := s.lookupOrProvision(r.Context(), claims.Email, claims.Name)
	if err != nil {
		s.logger.Error("sso provisioning failed", "email", claims.Email, "error", err)
		writeMessage(w, http.StatusInternalServerError, "SSO login failed")
		return
	}
	if u.AccountLocked {
		writeMessage(w, http.StatusUnauthorized,
			"Account is locked due to multiple failed login attempts. Contact an administrator.")
		return
	}

	sess := sessionFromContext(r.Context())
	s.sessions.Establish(w, sess, u)
	if err := s.users.RecordLoginSuccess(r.Context(), u.ID); err != nil {
		s.logger.Error("success record failed", "user_id", u.ID, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *SSO) lookupOrProvision(ctx context.Context, email, name string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	if name == "" {
		name = email
	}
	u, err = s.users.Create(ctx, domain.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: unusableHash(),
		Role:         domain.RoleUser,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost a race with a concurrent first login.
		return s.users.FindByEmail(ctx, email)
	}
	return u, err
}

// unusableHash returns a value no password can ever bcrypt-match.
func unusableHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "!sso:" + base64.RawStdEncoding.EncodeToString(b)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
