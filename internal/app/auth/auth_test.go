package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type fakeUserManager struct {
	users map[domain.UserIdentifier]*domain.User
}

func newFakeUserManager(users ...*domain.User) *fakeUserManager {
	m := &fakeUserManager{users: make(map[domain.UserIdentifier]*domain.User)}
	for _, user := range users {
		m.users[user.Identifier] = user
	}
	return m
}

func (m *fakeUserManager) GetUser(_ context.Context, id domain.UserIdentifier) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *fakeUserManager) RegisterUser(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.Identifier]; ok {
		return domain.ErrNotUnique
	}
	if err := user.HashPassword(); err != nil {
		return err
	}
	m.users[user.Identifier] = user
	return nil
}

func (m *fakeUserManager) UpdateUserInternal(_ context.Context, user *domain.User) (*domain.User, error) {
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	m.users[user.Identifier] = user
	return user, nil
}

type fakeBus struct {
	topics []string
}

func (b *fakeBus) Publish(topic string, _ ...any) {
	b.topics = append(b.topics, topic)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Core.SelfRegistrationAllowed = true
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.TokenLifetime = time.Hour
	cfg.Auth.MinPasswordLength = 8
	return cfg
}

func testUser(t *testing.T, id string, password string, admin bool) *domain.User {
	t.Helper()

	user := &domain.User{
		Identifier: domain.UserIdentifier(id),
		Email:      id,
		IsAdmin:    admin,
		Password:   domain.PrivateString(password),
	}
	require.NoError(t, user.HashPassword())
	return user
}

func TestAuthenticator_PlainLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues a token", func(t *testing.T) {
		bus := &fakeBus{}
		a := NewAuthenticator(testConfig(), bus, newFakeUserManager(
			testUser(t, "user@x.io", "correct horse", false),
		))

		user, token, err := a.PlainLogin(ctx, "user@x.io", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, domain.UserIdentifier("user@x.io"), user.Identifier)
		assert.NotNil(t, user.LastLogin)

		claims, err := a.tokens.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user@x.io", claims.Subject)
		assert.Contains(t, bus.topics, "auth:login")
	})

	t.Run("wrong password", func(t *testing.T) {
		bus := &fakeBus{}
		a := NewAuthenticator(testConfig(), bus, newFakeUserManager(
			testUser(t, "user@x.io", "correct horse", false),
		))

		_, _, err := a.PlainLogin(ctx, "user@x.io", "wrong")
		assert.Error(t, err)
		assert.Contains(t, bus.topics, "auth:login:failed")
	})

	t.Run("unknown user", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager())

		_, _, err := a.PlainLogin(ctx, "ghost@x.io", "whatever")
		assert.Error(t, err)
	})

	t.Run("disabled user", func(t *testing.T) {
		user := testUser(t, "user@x.io", "correct horse", false)
		now := time.Now()
		user.Disabled = &now
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(user))

		_, _, err := a.PlainLogin(ctx, "user@x.io", "correct horse")
		assert.Error(t, err)
	})

	t.Run("empty credentials", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager())

		_, _, err := a.PlainLogin(ctx, "  ", "")
		assert.Error(t, err)
	})
}

func TestAuthenticator_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and logs in a new user", func(t *testing.T) {
		users := newFakeUserManager()
		bus := &fakeBus{}
		a := NewAuthenticator(testConfig(), bus, users)

		user, token, err := a.Register(ctx, "New@X.io", "New User", "long enough password")
		require.NoError(t, err)
		assert.Equal(t, domain.UserIdentifier("new@x.io"), user.Identifier)
		assert.NotEmpty(t, token)
		assert.Contains(t, bus.topics, "user:registered")

		// the stored password is hashed
		stored := users.users["new@x.io"]
		assert.NoError(t, stored.CheckPassword("long enough password"))
	})

	t.Run("rejected when registration is disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Core.SelfRegistrationAllowed = false
		a := NewAuthenticator(cfg, &fakeBus{}, newFakeUserManager())

		_, _, err := a.Register(ctx, "new@x.io", "New User", "long enough password")
		assert.Error(t, err)
	})

	t.Run("weak password", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager())

		_, _, err := a.Register(ctx, "new@x.io", "New User", "short")
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("duplicate email", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(
			testUser(t, "new@x.io", "long enough password", false),
		))

		_, _, err := a.Register(ctx, "new@x.io", "New User", "long enough password")
		assert.ErrorIs(t, err, domain.ErrNotUnique)
	})
}

func TestAuthenticator_AuthenticateContext(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(
			testUser(t, "admin@x.io", "correct horse", true),
		))
		_, token, err := a.PlainLogin(ctx, "admin@x.io", "correct horse")
		require.NoError(t, err)

		authCtx, user, err := a.AuthenticateContext(ctx, token)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		assert.NoError(t, domain.ValidateAdminAccessRights(authCtx))
	})

	t.Run("tampered token", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(
			testUser(t, "user@x.io", "correct horse", false),
		))
		_, token, err := a.PlainLogin(ctx, "user@x.io", "correct horse")
		require.NoError(t, err)

		other := testConfig()
		other.Auth.TokenSecret = "different-secret"
		b := NewAuthenticator(other, &fakeBus{}, newFakeUserManager())

		_, _, err = b.AuthenticateContext(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token of a deleted user", func(t *testing.T) {
		users := newFakeUserManager(testUser(t, "user@x.io", "correct horse", false))
		a := NewAuthenticator(testConfig(), &fakeBus{}, users)
		_, token, err := a.PlainLogin(ctx, "user@x.io", "correct horse")
		require.NoError(t, err)

		delete(users.users, "user@x.io")

		_, _, err = a.AuthenticateContext(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthenticator_ChangePassword(t *testing.T) {
	ctx := domain.SetUserInfo(context.Background(), &domain.ContextUserInfo{Id: "user@x.io"})

	t.Run("success", func(t *testing.T) {
		users := newFakeUserManager(testUser(t, "user@x.io", "old password 1", false))
		a := NewAuthenticator(testConfig(), &fakeBus{}, users)

		err := a.ChangePassword(ctx, "user@x.io", "old password 1", "new password 2")
		require.NoError(t, err)
		assert.NoError(t, users.users["user@x.io"].CheckPassword("new password 2"))
	})

	t.Run("wrong old password", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(
			testUser(t, "user@x.io", "old password 1", false),
		))

		err := a.ChangePassword(ctx, "user@x.io", "nope", "new password 2")
		assert.Error(t, err)
	})

	t.Run("other user's password", func(t *testing.T) {
		a := NewAuthenticator(testConfig(), &fakeBus{}, newFakeUserManager(
			testUser(t, "victim@x.io", "old password 1", false),
		))

		err := a.ChangePassword(ctx, "victim@x.io", "old password 1", "new password 2")
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestTokenIssuer_Expiry(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.TokenLifetime = -time.Minute
	issuer := NewTokenIssuer(&cfg.Auth)

	token, err := issuer.CreateToken(&domain.User{Identifier: "user@x.io"})
	require.NoError(t, err)

	_, err = issuer.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
