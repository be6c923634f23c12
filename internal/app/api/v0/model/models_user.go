package model

import (
	"time"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type User struct {
	Identifier string `json:"Identifier"`
	Email      string `json:"Email"`
	FullName   string `json:"FullName"`
	IsAdmin    bool   `json:"IsAdmin"`
	Role       string `json:"Role"`

	Phone    string `json:"Phone"`
	Bio      string `json:"Bio"`
	Country  string `json:"Country"`
	Timezone string `json:"Timezone"`

	NotifyByEmail bool `json:"NotifyByEmail"`

	Password       string     `json:"Password,omitempty"`
	Disabled       bool       `json:"Disabled"`       // if this field is set, the user is disabled
	DisabledReason string     `json:"DisabledReason"` // the reason why the user has been disabled
	LastLogin      *time.Time `json:"LastLogin,omitempty"`

	// Calculated

	AttemptCount int `json:"AttemptCount"`
}

func NewUser(src *domain.User) *User {
	return &User{
		Identifier:     string(src.Identifier),
		Email:          src.Email,
		FullName:       src.FullName,
		IsAdmin:        src.IsAdmin,
		Role:           string(src.RoleName()),
		Phone:          src.Phone,
		Bio:            src.Bio,
		Country:        src.Country,
		Timezone:       src.Timezone,
		NotifyByEmail:  src.NotifyByEmail,
		Password:       "", // never expose the password
		Disabled:       src.IsDisabled(),
		DisabledReason: src.DisabledReason,
		LastLogin:      src.LastLogin,

		AttemptCount: src.AttemptCount,
	}
}

func NewUsers(src []domain.User) []User {
	results := make([]User, len(src))
	for i := range src {
		results[i] = *NewUser(&src[i])
	}

	return results
}

func NewDomainUser(src *User) *domain.User {
	now := time.Now()
	res := &domain.User{
		Identifier:     domain.UserIdentifier(src.Identifier),
		Email:          src.Email,
		FullName:       src.FullName,
		IsAdmin:        src.IsAdmin,
		Role:           domain.UserRole(src.Role),
		Phone:          src.Phone,
		Bio:            src.Bio,
		Country:        src.Country,
		Timezone:       src.Timezone,
		NotifyByEmail:  src.NotifyByEmail,
		Password:       domain.PrivateString(src.Password),
		Disabled:       nil, // set below
		DisabledReason: src.DisabledReason,
	}

	if src.Disabled {
		res.Disabled = &now
		if res.DisabledReason == "" {
			res.DisabledReason = "disabled by admin"
		}
	}

	return res
}
