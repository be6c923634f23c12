package model

import (
	"github.com/prepcheck/prepcheck/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"Email" validate:"required"`
	Password string `json:"Password" validate:"required"`
}

type RegistrationRequest struct {
	Email    string `json:"Email" validate:"required,email"`
	FullName string `json:"FullName" validate:"required"`
	Password string `json:"Password" validate:"required"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"OldPassword" validate:"required"`
	NewPassword string `json:"NewPassword" validate:"required"`
}

// AuthResponse is returned after a successful login or registration. The token
// has to be presented as a bearer credential on subsequent requests.
type AuthResponse struct {
	Token string  `json:"Token"`
	User  Profile `json:"User"`
}

type Profile struct {
	Identifier  string   `json:"Identifier"`
	Email       string   `json:"Email"`
	FullName    string   `json:"FullName"`
	IsAdmin     bool     `json:"IsAdmin"`
	Role        string   `json:"Role"`
	Permissions []string `json:"Permissions"`
}

func NewProfile(src domain.Profile) Profile {
	return Profile{
		Identifier:  string(src.Identifier),
		Email:       src.Email,
		FullName:    src.FullName,
		IsAdmin:     src.IsAdmin,
		Role:        string(src.Role),
		Permissions: src.Permissions,
	}
}

type SessionInfo struct {
	LoggedIn       bool    `json:"LoggedIn"`
	IsAdmin        bool    `json:"IsAdmin,omitempty"`
	UserIdentifier *string `json:"UserIdentifier,omitempty"`
	UserFullName   *string `json:"UserFullName,omitempty"`
	UserEmail      *string `json:"UserEmail,omitempty"`
}

// GuardRouteRequest describes a navigation attempt that the route guard has to
// evaluate.
type GuardRouteRequest struct {
	Path          string `json:"Path"`
	RequiresAuth  bool   `json:"RequiresAuth"`
	RequiresAdmin bool   `json:"RequiresAdmin"`
	GuestOnly     bool   `json:"GuestOnly"`
}

// GuardDecision is the outcome of a route guard evaluation. An empty redirect
// target means the navigation may proceed.
type GuardDecision struct {
	Proceed    bool   `json:"Proceed"`
	RedirectTo string `json:"RedirectTo,omitempty"`
}
