package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_IsDisabled(t *testing.T) {
	user := &User{}
	assert.False(t, user.IsDisabled())

	now := time.Now()
	user.Disabled = &now
	assert.True(t, user.IsDisabled())
}

func TestUser_RoleName(t *testing.T) {
	user := &User{}
	assert.Equal(t, RoleUser, user.RoleName())

	user.Role = RoleUser
	assert.Equal(t, RoleUser, user.RoleName())

	user.IsAdmin = true
	assert.Equal(t, RoleAdmin, user.RoleName())
}

func TestUser_HasPermission(t *testing.T) {
	user := &User{Permissions: PermissionList{"quiz:take"}}
	assert.True(t, user.HasPermission("quiz:take"))
	assert.False(t, user.HasPermission("users:manage"))

	user.IsAdmin = true
	assert.True(t, user.HasPermission("users:manage"))
}

func TestUser_HasWeakPassword(t *testing.T) {
	user := &User{}
	assert.NoError(t, user.HasWeakPassword(8)) // empty password is not checked

	user.Password = "short"
	assert.Error(t, user.HasWeakPassword(8))

	user.Password = "long-enough-password"
	assert.NoError(t, user.HasWeakPassword(8))
}

func TestUser_CheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := &User{Password: PrivateString(hash)}
	assert.NoError(t, user.CheckPassword("secret-password"))
	assert.Error(t, user.CheckPassword("wrong-password"))

	now := time.Now()
	user.Disabled = &now
	assert.Error(t, user.CheckPassword("secret-password"))

	user.Disabled = nil
	user.Password = ""
	assert.Error(t, user.CheckPassword("secret-password"))
}

func TestUser_HashPassword(t *testing.T) {
	user := &User{Password: "plaintext"}
	assert.NoError(t, user.HashPassword())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("plaintext")))

	// hashing twice must not double-hash
	hashed := user.Password
	assert.NoError(t, user.HashPassword())
	assert.Equal(t, hashed, user.Password)
}

func TestUser_ToProfile(t *testing.T) {
	user := &User{
		Identifier:  "u1",
		Email:       "u1@example.com",
		FullName:    "User One",
		IsAdmin:     true,
		Permissions: PermissionList{"quiz:take"},
	}

	profile := user.ToProfile()
	assert.Equal(t, UserIdentifier("u1"), profile.Identifier)
	assert.True(t, profile.IsAdmin)
	assert.Equal(t, RoleAdmin, profile.Role)
	assert.Equal(t, PermissionList{"quiz:take"}, profile.Permissions)
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := &Question{CorrectOption: "B"}
	assert.True(t, q.IsCorrect("B"))
	assert.True(t, q.IsCorrect(" b "))
	assert.False(t, q.IsCorrect("A"))
	assert.False(t, q.IsCorrect(""))
}

func TestNotification_IsExpired(t *testing.T) {
	now := time.Now()

	n := &Notification{}
	assert.False(t, n.IsExpired(now)) // no expiry set

	past := now.Add(-time.Minute)
	n.ExpiresAt = &past
	assert.True(t, n.IsExpired(now))

	n.Persistent = true
	assert.False(t, n.IsExpired(now))
}
