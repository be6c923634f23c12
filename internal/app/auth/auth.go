package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

// region dependencies

type UserManager interface {
	// GetUser returns a user by its identifier.
	GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error)
	// RegisterUser creates a new user in the database.
	RegisterUser(ctx context.Context, user *domain.User) error
	// UpdateUserInternal updates an existing user in the database without permission checks.
	UpdateUserInternal(ctx context.Context, user *domain.User) (*domain.User, error)
}

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}

// endregion dependencies

// Authenticator is the main entry point for all authentication related tasks:
// password authentication, self registration and bearer token handling.
type Authenticator struct {
	cfg    *config.Config
	bus    EventBus
	users  UserManager
	tokens *TokenIssuer
}

func NewAuthenticator(cfg *config.Config, bus EventBus, users UserManager) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		bus:    bus,
		users:  users,
		tokens: NewTokenIssuer(&cfg.Auth),
	}
}

// PlainLogin performs a password authentication for a user. The username and
// password are trimmed before usage. On success a fresh bearer token is issued.
func (a *Authenticator) PlainLogin(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("missing username or password")
	}

	user, err := a.passwordAuthentication(ctx, domain.UserIdentifier(username), password)
	if err != nil {
		a.bus.Publish(app.TopicAuthLoginFailed, username)
		return nil, "", fmt.Errorf("login failed: %w", err)
	}

	token, err := a.tokens.CreateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("login failed: %w", err)
	}

	a.bus.Publish(app.TopicAuthLogin, user.Identifier)

	return user, token, nil
}

func (a *Authenticator) passwordAuthentication(
	ctx context.Context,
	identifier domain.UserIdentifier,
	password string,
) (*domain.User, error) {
	ctx = domain.SetUserInfo(ctx,
		domain.SystemAdminContextUserInfo()) // switch to admin user context to load the user record

	user, err := a.users.GetUser(ctx, identifier)
	if err != nil {
		return nil, errors.New("failed to authenticate user")
	}
	if user.IsDisabled() {
		return nil, errors.New("user is disabled")
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, errors.New("failed to authenticate user")
	}

	now := time.Now()
	user.LastLogin = &now
	if _, err := a.users.UpdateUserInternal(ctx, user); err != nil {
		slog.Warn("failed to update last login timestamp", "identifier", user.Identifier, "error", err)
	}

	return user, nil
}

// Register creates a new local account and immediately logs it in. It fails if
// self registration is disabled or the password is too weak.
func (a *Authenticator) Register(
	ctx context.Context,
	email, fullName, password string,
) (*domain.User, string, error) {
	if !a.cfg.Core.SelfRegistrationAllowed {
		return nil, "", errors.New("self registration is disabled")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("invalid email address: %w", domain.ErrInvalidData)
	}

	user := &domain.User{
		Identifier: domain.UserIdentifier(email),
		Email:      email,
		FullName:   strings.TrimSpace(fullName),
		Role:       domain.RoleUser,
		Password:   domain.PrivateString(password),
	}
	if password == "" || user.HasWeakPassword(a.cfg.Auth.MinPasswordLength) != nil {
		return nil, "", fmt.Errorf("password too weak: %w", domain.ErrInvalidData)
	}

	ctx = domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
	if err := a.users.RegisterUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("registration failed: %w", err)
	}

	token, err := a.tokens.CreateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("registration failed: %w", err)
	}

	a.bus.Publish(app.TopicUserRegistered, user.Identifier)
	a.bus.Publish(app.TopicAuthLogin, user.Identifier)

	return user, token, nil
}

// Logout invalidates nothing server-side (tokens are stateless) but records the
// event for auditing and metrics.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	claims, err := a.tokens.VerifyToken(token)
	if err != nil {
		return nil // an invalid token has nothing to log out
	}

	a.bus.Publish(app.TopicAuthLogout, domain.UserIdentifier(claims.Subject))
	return nil
}

// AuthenticateContext verifies the bearer token and returns a context that
// carries the authenticated user's identity.
func (a *Authenticator) AuthenticateContext(ctx context.Context, token string) (context.Context, *domain.User, error) {
	claims, err := a.tokens.VerifyToken(token)
	if err != nil {
		return ctx, nil, err
	}

	loadCtx := domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
	user, err := a.users.GetUser(loadCtx, domain.UserIdentifier(claims.Subject))
	if err != nil {
		return ctx, nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
	}
	if user.IsDisabled() {
		return ctx, nil, fmt.Errorf("%w: user is disabled", ErrInvalidToken)
	}

	ctx = domain.SetUserInfo(ctx, &domain.ContextUserInfo{
		Id:      user.Identifier,
		IsAdmin: user.IsAdmin,
	})

	return ctx, user, nil
}

// ChangePassword sets a new password for the given user after verifying the
// old one.
func (a *Authenticator) ChangePassword(
	ctx context.Context,
	id domain.UserIdentifier,
	oldPassword, newPassword string,
) error {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return err
	}

	loadCtx := domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
	user, err := a.users.GetUser(loadCtx, id)
	if err != nil {
		return fmt.Errorf("unable to load user: %w", err)
	}

	if err := user.CheckPassword(oldPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	user.Password = domain.PrivateString(newPassword)
	if newPassword == "" || user.HasWeakPassword(a.cfg.Auth.MinPasswordLength) != nil {
		return fmt.Errorf("password too weak: %w", domain.ErrInvalidData)
	}

	if _, err := a.users.UpdateUserInternal(loadCtx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
