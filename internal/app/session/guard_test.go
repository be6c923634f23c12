package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepcheck/prepcheck/internal/domain"
)

func guardManager(t *testing.T, token string, profile *domain.Profile) (*Manager, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	ctx := context.Background()
	if token != "" {
		store.Put(ctx, TokenKey, token)
	}
	if profile != nil {
		raw, err := json.Marshal(profile)
		require.NoError(t, err)
		store.Put(ctx, ProfileKey, string(raw))
	}
	return NewManager(store, &fakeAuth{}, nil), store
}

func TestGuard_AnonymousVisitor(t *testing.T) {
	ctx := context.Background()
	m, _ := guardManager(t, "", nil)

	t.Run("public route proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: "/about"}).ShouldRedirect())
	})

	t.Run("guest route proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: LoginPath, GuestOnly: true}).ShouldRedirect())
	})

	t.Run("protected route redirects to login", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: UserLandingPath, RequiresAuth: true})
		assert.Equal(t, LoginPath, d.Target)
	})

	t.Run("admin route redirects to user landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true})
		assert.Equal(t, LoginPath, d.Target)
	})

	t.Run("root proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: "/"}).ShouldRedirect())
	})
}

func TestGuard_AuthenticatedUser(t *testing.T) {
	ctx := context.Background()
	m, _ := guardManager(t, validToken(t), &domain.Profile{Identifier: "u@x.io"})

	t.Run("protected route proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: UserLandingPath, RequiresAuth: true}).ShouldRedirect())
	})

	t.Run("guest route bounces to user landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: LoginPath, GuestOnly: true})
		assert.Equal(t, UserLandingPath, d.Target)
	})

	t.Run("admin route bounces to user landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true})
		assert.Equal(t, UserLandingPath, d.Target)
	})

	t.Run("admin namespace without flags bounces to user landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: "/admin/subjects"})
		assert.Equal(t, UserLandingPath, d.Target)
	})

	t.Run("root redirects to user landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: "/"})
		assert.Equal(t, UserLandingPath, d.Target)
	})
}

func TestGuard_AuthenticatedAdmin(t *testing.T) {
	ctx := context.Background()
	m, _ := guardManager(t, validToken(t), &domain.Profile{Identifier: "a@x.io", IsAdmin: true})

	t.Run("admin route proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true}).ShouldRedirect())
	})

	t.Run("guest route bounces to admin landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: RegisterPath, GuestOnly: true})
		assert.Equal(t, AdminLandingPath, d.Target)
	})

	t.Run("user namespace bounces to admin landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: UserLandingPath, RequiresAuth: true})
		assert.Equal(t, AdminLandingPath, d.Target)
	})

	t.Run("root redirects to admin landing", func(t *testing.T) {
		d := m.Evaluate(ctx, Route{Path: "/"})
		assert.Equal(t, AdminLandingPath, d.Target)
	})

	t.Run("public route outside both namespaces proceeds", func(t *testing.T) {
		assert.False(t, m.Evaluate(ctx, Route{Path: "/about"}).ShouldRedirect())
	})
}

func TestGuard_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	m, store := guardManager(t, expiredToken(t), &domain.Profile{Identifier: "u@x.io"})

	d := m.Evaluate(ctx, Route{Path: UserLandingPath, RequiresAuth: true})
	assert.Equal(t, LoginPath, d.Target)

	// the stale credential and the profile are purged as a side effect
	_, ok := store.Get(ctx, TokenKey)
	assert.False(t, ok)
	_, ok = store.Get(ctx, ProfileKey)
	assert.False(t, ok)
}

func TestGuard_MalformedToken(t *testing.T) {
	ctx := context.Background()
	m, store := guardManager(t, "not-a-jwt", &domain.Profile{Identifier: "u@x.io"})

	d := m.Evaluate(ctx, Route{Path: LoginPath, GuestOnly: true})
	assert.False(t, d.ShouldRedirect())

	_, ok := store.Get(ctx, TokenKey)
	assert.False(t, ok)
}

func TestGuard_ValidTokenWithoutProfile(t *testing.T) {
	// a valid token with a missing profile is treated as non-admin
	ctx := context.Background()
	m, _ := guardManager(t, validToken(t), nil)

	d := m.Evaluate(ctx, Route{Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true})
	assert.Equal(t, UserLandingPath, d.Target)

	assert.False(t, m.Evaluate(ctx, Route{Path: UserLandingPath, RequiresAuth: true}).ShouldRedirect())
}

func TestGuard_HandleUnauthorized(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys session and redirects to login", func(t *testing.T) {
		auth := &fakeAuth{}
		store := NewMemoryStore()
		store.Put(ctx, TokenKey, validToken(t))
		m := NewManager(store, auth, nil)

		d := m.HandleUnauthorized(ctx, UserLandingPath)
		assert.Equal(t, LoginPath, d.Target)
		_, ok := store.Get(ctx, TokenKey)
		assert.False(t, ok)
	})

	t.Run("no redirect loop on the login page", func(t *testing.T) {
		m, _ := guardManager(t, validToken(t), nil)

		d := m.HandleUnauthorized(ctx, LoginPath)
		assert.False(t, d.ShouldRedirect())
	})
}
