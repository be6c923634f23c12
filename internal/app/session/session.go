// Package session implements the client-side session state of the PrepCheck
// frontend: a persisted key-value credential store, a structural token validity
// check and the navigation guard that decides, per navigation attempt, whether
// to proceed or redirect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prepcheck/prepcheck/internal/domain"
)

// ErrUnauthorized is returned by the auth collaborator when the backend
// rejected the presented credential.
var ErrUnauthorized = errors.New("unauthorized")

// State of a session. There is no intermediate state: a refresh either
// confirms StateAuthenticated or collapses the session to StateAnonymous.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// AuthService is the HTTP collaborator of the session manager. Implementations
// return ErrUnauthorized (possibly wrapped) when the backend answers with an
// unauthorized status.
type AuthService interface {
	// Login authenticates with email and password and returns a bearer token
	// plus the user profile.
	Login(ctx context.Context, email, password string) (string, domain.Profile, error)
	// Register creates a new account and logs it in.
	Register(ctx context.Context, registration RegistrationData) (string, domain.Profile, error)
	// Logout notifies the backend that the given token is no longer in use.
	Logout(ctx context.Context, token string) error
	// GetProfile re-fetches the profile for the given token.
	GetProfile(ctx context.Context, token string) (domain.Profile, error)
}

// TokenInstaller receives the current bearer token whenever it changes, so that
// it can be attached to all subsequent outgoing requests. An empty token means
// that the credential has to be removed.
type TokenInstaller interface {
	InstallToken(token string)
}

// TokenInstallerFunc adapts a plain function to the TokenInstaller interface.
type TokenInstallerFunc func(token string)

func (f TokenInstallerFunc) InstallToken(token string) {
	f(token)
}

// RegistrationData is the payload for a new account.
type RegistrationData struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Manager owns the session state: it is the single writer of the credential
// store and the only component that transitions between the anonymous and the
// authenticated state.
type Manager struct {
	store     Store
	auth      AuthService
	installer TokenInstaller
}

func NewManager(store Store, auth AuthService, installer TokenInstaller) *Manager {
	if installer == nil {
		installer = TokenInstallerFunc(func(string) {})
	}

	return &Manager{
		store:     store,
		auth:      auth,
		installer: installer,
	}
}

// State returns the current session state, derived from the cached credential.
func (m *Manager) State(ctx context.Context) State {
	if m.TokenValid(ctx) {
		return StateAuthenticated
	}
	return StateAnonymous
}

// CachedProfile returns the locally cached profile, or nil if it is absent.
// A corrupt profile entry is purged and treated as absent.
func (m *Manager) CachedProfile(ctx context.Context) *domain.Profile {
	raw, ok := m.store.Get(ctx, ProfileKey)
	if !ok || raw == "" {
		return nil
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		slog.Debug("purging corrupt cached profile", "error", err)
		m.store.Remove(ctx, ProfileKey)
		return nil
	}

	return &profile
}

// Token returns the cached bearer token, or an empty string if absent.
func (m *Manager) Token(ctx context.Context) string {
	token, _ := m.store.Get(ctx, TokenKey)
	return token
}

// Login authenticates against the auth collaborator. On success the token and
// profile are persisted and the token is installed as the default bearer
// credential for outgoing requests. On failure no state is mutated.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	token, profile, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	m.persist(ctx, token, profile)

	return &profile, nil
}

// Register creates a new account and, like Login, persists the fresh session on
// success.
func (m *Manager) Register(ctx context.Context, registration RegistrationData) (*domain.Profile, error) {
	token, profile, err := m.auth.Register(ctx, registration)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	m.persist(ctx, token, profile)

	return &profile, nil
}

// Logout notifies the backend on a best-effort basis and then unconditionally
// clears the persisted session state. It never fails: a failed or impossible
// backend notification is logged and swallowed, the local clear always runs.
func (m *Manager) Logout(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("logout notification panicked", "panic", r)
		}
		m.clear(ctx)
	}()

	token, ok := m.store.Get(ctx, TokenKey)
	if !ok || token == "" {
		return
	}

	if err := m.auth.Logout(ctx, token); err != nil {
		slog.Debug("logout notification failed", "error", err)
	}
}

// Refresh re-fetches the profile from the backend. It either confirms the
// authenticated state with fresh data or collapses the session to anonymous.
func (m *Manager) Refresh(ctx context.Context) (*domain.Profile, error) {
	token, ok := m.store.Get(ctx, TokenKey)
	if !ok || token == "" {
		return nil, errors.New("not authenticated")
	}

	profile, err := m.auth.GetProfile(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.Logout(ctx)
		}
		return nil, fmt.Errorf("profile refresh failed: %w", err)
	}

	// The session may have been cleared while the refresh was in flight. In that
	// case the stale result is discarded instead of resurrecting the session.
	if current, ok := m.store.Get(ctx, TokenKey); !ok || current != token {
		return nil, errors.New("session cleared during refresh")
	}

	m.putProfile(ctx, profile)

	return &profile, nil
}

func (m *Manager) persist(ctx context.Context, token string, profile domain.Profile) {
	m.store.Put(ctx, TokenKey, token)
	m.putProfile(ctx, profile)
	m.installer.InstallToken(token)
}

func (m *Manager) putProfile(ctx context.Context, profile domain.Profile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		slog.Error("failed to serialize profile", "error", err)
		return
	}
	m.store.Put(ctx, ProfileKey, string(raw))
}

func (m *Manager) clear(ctx context.Context) {
	m.store.Remove(ctx, TokenKey)
	m.store.Remove(ctx, ProfileKey)
	m.installer.InstallToken("")
}
