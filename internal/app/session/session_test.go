package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type fakeAuth struct {
	loginToken    string
	loginProfile  domain.Profile
	loginErr      error
	logoutErr     error
	logoutCalls   int
	logoutTokens  []string
	profileResult domain.Profile
	profileErr    error
	profileHook   func() // runs before GetProfile returns
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (string, domain.Profile, error) {
	return f.loginToken, f.loginProfile, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, _ RegistrationData) (string, domain.Profile, error) {
	return f.loginToken, f.loginProfile, f.loginErr
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.logoutCalls++
	f.logoutTokens = append(f.logoutTokens, token)
	return f.logoutErr
}

func (f *fakeAuth) GetProfile(_ context.Context, _ string) (domain.Profile, error) {
	if f.profileHook != nil {
		f.profileHook()
	}
	return f.profileResult, f.profileErr
}

type recordingInstaller struct {
	tokens []string
}

func (r *recordingInstaller) InstallToken(token string) {
	r.tokens = append(r.tokens, token)
}

func newTestManager(auth *fakeAuth) (*Manager, *MemoryStore, *recordingInstaller) {
	store := NewMemoryStore()
	installer := &recordingInstaller{}
	return NewManager(store, auth, installer), store, installer
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists token and profile", func(t *testing.T) {
		auth := &fakeAuth{
			loginToken:   validToken(t),
			loginProfile: domain.Profile{Identifier: "u@x.io", IsAdmin: true},
		}
		m, store, installer := newTestManager(auth)

		profile, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)
		assert.True(t, profile.IsAdmin)

		token, ok := store.Get(ctx, TokenKey)
		assert.True(t, ok)
		assert.Equal(t, auth.loginToken, token)
		cached := m.CachedProfile(ctx)
		require.NotNil(t, cached)
		assert.Equal(t, auth.loginProfile.Identifier, cached.Identifier)
		assert.Equal(t, []string{auth.loginToken}, installer.tokens)
		assert.Equal(t, StateAuthenticated, m.State(ctx))
	})

	t.Run("failure leaves state untouched", func(t *testing.T) {
		auth := &fakeAuth{loginErr: ErrUnauthorized}
		m, store, installer := newTestManager(auth)

		_, err := m.Login(ctx, "u@x.io", "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, ok := store.Get(ctx, TokenKey)
		assert.False(t, ok)
		assert.Empty(t, installer.tokens)
		assert.Equal(t, StateAnonymous, m.State(ctx))
	})
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears state and notifies backend", func(t *testing.T) {
		auth := &fakeAuth{loginToken: validToken(t)}
		m, store, installer := newTestManager(auth)
		_, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)

		m.Logout(ctx)

		_, ok := store.Get(ctx, TokenKey)
		assert.False(t, ok)
		_, ok = store.Get(ctx, ProfileKey)
		assert.False(t, ok)
		assert.Equal(t, 1, auth.logoutCalls)
		assert.Equal(t, "", installer.tokens[len(installer.tokens)-1])
	})

	t.Run("clears state even if the backend call fails", func(t *testing.T) {
		auth := &fakeAuth{loginToken: validToken(t), logoutErr: errors.New("boom")}
		m, store, _ := newTestManager(auth)
		_, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)

		m.Logout(ctx)

		_, ok := store.Get(ctx, TokenKey)
		assert.False(t, ok)
	})

	t.Run("idempotent without a session", func(t *testing.T) {
		auth := &fakeAuth{}
		m, _, _ := newTestManager(auth)

		m.Logout(ctx)
		m.Logout(ctx)

		assert.Zero(t, auth.logoutCalls)
	})
}

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the cached profile", func(t *testing.T) {
		auth := &fakeAuth{
			loginToken:    validToken(t),
			loginProfile:  domain.Profile{Identifier: "u@x.io", FullName: "Old Name"},
			profileResult: domain.Profile{Identifier: "u@x.io", FullName: "New Name"},
		}
		m, _, _ := newTestManager(auth)
		_, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)

		profile, err := m.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, "New Name", profile.FullName)
		assert.Equal(t, "New Name", m.CachedProfile(ctx).FullName)
	})

	t.Run("unauthorized response destroys the session", func(t *testing.T) {
		auth := &fakeAuth{loginToken: validToken(t), profileErr: ErrUnauthorized}
		m, store, _ := newTestManager(auth)
		_, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)

		_, err = m.Refresh(ctx)
		require.Error(t, err)
		_, ok := store.Get(ctx, TokenKey)
		assert.False(t, ok)
	})

	t.Run("does not resurrect a session cleared mid-flight", func(t *testing.T) {
		auth := &fakeAuth{
			loginToken:    validToken(t),
			profileResult: domain.Profile{Identifier: "u@x.io"},
		}
		m, store, _ := newTestManager(auth)
		_, err := m.Login(ctx, "u@x.io", "secret")
		require.NoError(t, err)

		auth.profileHook = func() { m.Logout(ctx) }

		_, err = m.Refresh(ctx)
		require.Error(t, err)
		_, ok := store.Get(ctx, ProfileKey)
		assert.False(t, ok)
		assert.Equal(t, StateAnonymous, m.State(ctx))
	})

	t.Run("fails without a session", func(t *testing.T) {
		m, _, _ := newTestManager(&fakeAuth{})

		_, err := m.Refresh(ctx)
		assert.Error(t, err)
	})
}

func TestManager_CachedProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("absent profile", func(t *testing.T) {
		m, _, _ := newTestManager(&fakeAuth{})
		assert.Nil(t, m.CachedProfile(ctx))
	})

	t.Run("corrupt profile is purged", func(t *testing.T) {
		m, store, _ := newTestManager(&fakeAuth{})
		store.Put(ctx, ProfileKey, "{not json")

		assert.Nil(t, m.CachedProfile(ctx))
		_, ok := store.Get(ctx, ProfileKey)
		assert.False(t, ok)
	})
}
