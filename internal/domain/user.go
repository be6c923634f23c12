package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserIdentifier string

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the user model. Learners and administrators share the same model,
// administrative accounts are flagged via IsAdmin.
type User struct {
	BaseModel

	// required fields
	Identifier UserIdentifier `gorm:"primaryKey;column:identifier"`
	Email      string         `form:"email" binding:"required,email"`
	FullName   string         `form:"full_name" binding:"required"`
	IsAdmin    bool
	Role       UserRole

	// optional profile fields
	Phone    string `form:"phone" binding:"omitempty"`
	Bio      string `form:"bio" binding:"omitempty"`
	Country  string `form:"country" binding:"omitempty"`
	Timezone string `form:"timezone" binding:"omitempty"`

	// notification preferences
	NotifyByEmail bool

	// granted permission identifiers
	Permissions PermissionList `gorm:"column:permissions;serializer:json"`

	Password       PrivateString `form:"password" binding:"omitempty"`
	Disabled       *time.Time    `gorm:"index;column:disabled"` // if this field is set, the user is disabled
	DisabledReason string
	LastLogin      *time.Time `gorm:"column:last_login"`

	AttemptCount int `gorm:"-"`
}

type PermissionList []string

// IsDisabled returns true if the user is disabled. In such a case, no login is possible.
func (u *User) IsDisabled() bool {
	return u.Disabled != nil
}

// RoleName returns the effective role of the user. The admin flag wins over the stored role.
func (u *User) RoleName() UserRole {
	if u.IsAdmin {
		return RoleAdmin
	}
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// HasPermission checks whether the user holds the given permission. Administrators hold all permissions.
func (u *User) HasPermission(permission string) bool {
	if u.IsAdmin {
		return true
	}
	return slices.Contains(u.Permissions, permission)
}

func (u *User) HasWeakPassword(minLength int) error {
	if u.Password == "" {
		return nil // password is not set, so no check needed
	}

	if len(u.Password) < minLength {
		return fmt.Errorf("password is too short, minimum length is %d", minLength)
	}

	return nil
}

func (u *User) CheckPassword(password string) error {
	if u.IsDisabled() {
		return errors.New("user disabled")
	}

	if u.Password == "" {
		return errors.New("empty user password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return errors.New("wrong password")
	}

	return nil
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil // nothing to hash
	}

	if _, err := bcrypt.Cost([]byte(u.Password)); err == nil {
		return nil // password already hashed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = PrivateString(hash)

	return nil
}

func (u *User) CopyCalculatedAttributes(src *User) {
	u.BaseModel = src.BaseModel
	u.AttemptCount = src.AttemptCount
}

// Profile is the session-cached projection of a user. It is what gets persisted
// to the session key-value store and evaluated by the navigation guard.
type Profile struct {
	Identifier  UserIdentifier `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	IsAdmin     bool           `json:"is_admin"`
	Role        UserRole       `json:"role"`
	Permissions PermissionList `json:"permissions"`
}

func (u *User) ToProfile() Profile {
	return Profile{
		Identifier:  u.Identifier,
		Email:       u.Email,
		FullName:    u.FullName,
		IsAdmin:     u.IsAdmin,
		Role:        u.RoleName(),
		Permissions: u.Permissions,
	}
}
