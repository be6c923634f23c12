package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type memUserRepo struct {
	users map[domain.UserIdentifier]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[domain.UserIdentifier]*domain.User)}
}

func (r *memUserRepo) GetUser(_ context.Context, id domain.UserIdentifier) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetAllUsers(_ context.Context) ([]domain.User, error) {
	all := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, *user)
	}
	return all, nil
}

func (r *memUserRepo) FindUsers(_ context.Context, search string) ([]domain.User, error) {
	var found []domain.User
	for _, user := range r.users {
		if strings.Contains(user.Email, search) || strings.Contains(user.FullName, search) {
			found = append(found, *user)
		}
	}
	return found, nil
}

func (r *memUserRepo) SaveUser(
	ctx context.Context,
	id domain.UserIdentifier,
	updateFunc func(u *domain.User) (*domain.User, error),
) error {
	user, ok := r.users[id]
	if !ok {
		user = &domain.User{Identifier: id}
	}
	updated, err := updateFunc(user)
	if err != nil {
		return err
	}
	r.users[id] = updated
	return nil
}

func (r *memUserRepo) DeleteUser(_ context.Context, id domain.UserIdentifier) error {
	delete(r.users, id)
	return nil
}

type noAttempts struct{}

func (noAttempts) GetUserAttemptCount(context.Context, domain.UserIdentifier) (int, error) {
	return 0, nil
}

func testManager(t *testing.T) (*Manager, *memUserRepo) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Core.AdminUser = "admin@prepcheck.io"
	cfg.Core.AdminPassword = "prepcheck-admin-pw"
	cfg.Core.AdminName = "Administrator"

	repo := newMemUserRepo()
	m, err := NewUserManager(cfg, evbus.New(10), repo, noAttempts{})
	require.NoError(t, err)
	return m, repo
}

func adminCtx() context.Context {
	return domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())
}

func userCtx(id domain.UserIdentifier) context.Context {
	return domain.SetUserInfo(context.Background(), &domain.ContextUserInfo{Id: id})
}

func TestManager_CreateAndGetUser(t *testing.T) {
	m, repo := testManager(t)
	ctx := adminCtx()

	_, err := m.CreateUser(ctx, &domain.User{
		Identifier: "user@x.io",
		Email:      "user@x.io",
		FullName:   "Some User",
		Password:   "plaintext-password",
	})
	require.NoError(t, err)

	// password is stored hashed
	stored := repo.users["user@x.io"]
	assert.NotEqual(t, "plaintext-password", string(stored.Password))
	assert.NoError(t, stored.CheckPassword("plaintext-password"))

	got, err := m.GetUser(ctx, "user@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Some User", got.FullName)
}

func TestManager_CreateUser_Validation(t *testing.T) {
	m, _ := testManager(t)
	ctx := adminCtx()

	t.Run("duplicate identifier", func(t *testing.T) {
		_, err := m.CreateUser(ctx, &domain.User{Identifier: "dup@x.io", Password: "some password"})
		require.NoError(t, err)
		_, err = m.CreateUser(ctx, &domain.User{Identifier: "dup@x.io", Password: "some password"})
		assert.ErrorIs(t, err, domain.ErrNotUnique)
	})

	t.Run("missing identifier", func(t *testing.T) {
		_, err := m.CreateUser(ctx, &domain.User{Password: "some password"})
		assert.Error(t, err)
	})

	t.Run("reserved identifier", func(t *testing.T) {
		_, err := m.CreateUser(ctx, &domain.User{Identifier: "all", Password: "some password"})
		assert.Error(t, err)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := m.CreateUser(ctx, &domain.User{Identifier: "nopw@x.io"})
		assert.Error(t, err)
	})

	t.Run("non-admin caller", func(t *testing.T) {
		_, err := m.CreateUser(userCtx("user@x.io"), &domain.User{Identifier: "x@x.io", Password: "some password"})
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestManager_UpdateUser(t *testing.T) {
	m, _ := testManager(t)
	ctx := adminCtx()

	_, err := m.CreateUser(ctx, &domain.User{Identifier: "user@x.io", Email: "user@x.io", Password: "some password"})
	require.NoError(t, err)

	t.Run("user can edit own profile", func(t *testing.T) {
		user, err := m.GetUser(userCtx("user@x.io"), "user@x.io")
		require.NoError(t, err)
		user.FullName = "Changed Name"
		user.Password = "" // keep

		updated, err := m.UpdateUser(userCtx("user@x.io"), user)
		require.NoError(t, err)
		assert.Equal(t, "Changed Name", updated.FullName)
		assert.NoError(t, updated.CheckPassword("some password"))
	})

	t.Run("user cannot grant themselves admin rights", func(t *testing.T) {
		user, err := m.GetUser(userCtx("user@x.io"), "user@x.io")
		require.NoError(t, err)
		user.IsAdmin = true
		user.Password = ""

		_, err = m.UpdateUser(userCtx("user@x.io"), user)
		assert.Error(t, err)
	})

	t.Run("user cannot edit other users", func(t *testing.T) {
		user, err := m.GetUser(ctx, "user@x.io")
		require.NoError(t, err)
		user.Password = ""

		_, err = m.UpdateUser(userCtx("other@x.io"), user)
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestManager_DeleteUser(t *testing.T) {
	m, repo := testManager(t)
	ctx := adminCtx()

	_, err := m.CreateUser(ctx, &domain.User{Identifier: "user@x.io", Password: "some password"})
	require.NoError(t, err)

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		adminSelf := domain.SetUserInfo(context.Background(),
			&domain.ContextUserInfo{Id: "user@x.io", IsAdmin: true})
		assert.Error(t, m.DeleteUser(adminSelf, "user@x.io"))
	})

	t.Run("admin deletes a user", func(t *testing.T) {
		require.NoError(t, m.DeleteUser(ctx, "user@x.io"))
		_, ok := repo.users["user@x.io"]
		assert.False(t, ok)
	})

	t.Run("deleting an unknown user fails", func(t *testing.T) {
		assert.Error(t, m.DeleteUser(ctx, "ghost@x.io"))
	})
}

func TestManager_SetUserDisabled(t *testing.T) {
	m, repo := testManager(t)
	ctx := adminCtx()

	_, err := m.CreateUser(ctx, &domain.User{Identifier: "user@x.io", Password: "some password"})
	require.NoError(t, err)

	require.NoError(t, m.SetUserDisabled(ctx, "user@x.io", true, "flagged"))
	assert.True(t, repo.users["user@x.io"].IsDisabled())
	assert.Equal(t, "flagged", repo.users["user@x.io"].DisabledReason)

	require.NoError(t, m.SetUserDisabled(ctx, "user@x.io", false, ""))
	assert.False(t, repo.users["user@x.io"].IsDisabled())
}

func TestManager_BootstrapAdminUser(t *testing.T) {
	m, repo := testManager(t)

	require.NoError(t, m.BootstrapAdminUser(context.Background()))

	admin, ok := repo.users["admin@prepcheck.io"]
	require.True(t, ok)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, admin.CheckPassword("prepcheck-admin-pw"))

	// bootstrapping twice is a no-op
	require.NoError(t, m.BootstrapAdminUser(context.Background()))
}
