package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type Manager struct {
	cfg *config.Config
	bus evbus.MessageBus

	users    UserDatabaseRepo
	attempts AttemptCountRepo
}

func NewUserManager(cfg *config.Config, bus evbus.MessageBus, users UserDatabaseRepo, attempts AttemptCountRepo) (
	*Manager,
	error,
) {
	m := &Manager{
		cfg: cfg,
		bus: bus,

		users:    users,
		attempts: attempts,
	}
	return m, nil
}

// RegisterUser creates a user record for a self-registered account. Unlike
// CreateUser it runs in a system context and does not require admin rights.
func (m Manager) RegisterUser(ctx context.Context, user *domain.User) error {
	if err := m.NewUser(ctx, user); err != nil {
		return err
	}

	m.bus.Publish(app.TopicUserRegistered, user.Identifier)

	return nil
}

func (m Manager) NewUser(ctx context.Context, user *domain.User) error {
	if user.Identifier == "" {
		return errors.New("missing user identifier")
	}

	existingUser, err := m.users.GetUser(ctx, user.Identifier)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unable to load existing user %s: %w", user.Identifier, err)
	}
	if existingUser != nil {
		return fmt.Errorf("user %s already exists: %w", user.Identifier, domain.ErrNotUnique)
	}

	if err := user.HashPassword(); err != nil {
		return err
	}

	err = m.users.SaveUser(ctx, user.Identifier, func(u *domain.User) (*domain.User, error) {
		u.Identifier = user.Identifier
		u.Email = user.Email
		u.FullName = user.FullName
		u.IsAdmin = user.IsAdmin
		u.Role = user.RoleName()
		u.Phone = user.Phone
		u.Bio = user.Bio
		u.Country = user.Country
		u.Timezone = user.Timezone
		u.NotifyByEmail = user.NotifyByEmail
		u.Password = user.Password
		return u, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	m.bus.Publish(app.TopicUserCreated, user.Identifier)

	return nil
}

func (m Manager) GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	user, err := m.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load user %s: %w", id, err)
	}

	attempts, _ := m.attempts.GetUserAttemptCount(ctx, id) // ignore error, count will be 0 in error case
	user.AttemptCount = attempts

	return user, nil
}

func (m Manager) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := m.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("unable to load user with email %s: %w", email, err)
	}

	if err := domain.ValidateUserAccessRights(ctx, user.Identifier); err != nil {
		return nil, err
	}

	return user, nil
}

func (m Manager) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	users, err := m.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load users: %w", err)
	}

	return users, nil
}

func (m Manager) FindUsers(ctx context.Context, search string) ([]domain.User, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	users, err := m.users.FindUsers(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("user search failed: %w", err)
	}

	return users, nil
}

func (m Manager) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateUserAccessRights(ctx, user.Identifier); err != nil {
		return nil, err
	}

	existingUser, err := m.users.GetUser(ctx, user.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing user %s: %w", user.Identifier, err)
	}

	if err := m.validateModifications(ctx, existingUser, user); err != nil {
		return nil, fmt.Errorf("update not allowed: %w", err)
	}

	user.CopyCalculatedAttributes(existingUser)
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if user.Password == "" { // keep old password
		user.Password = existingUser.Password
	}

	err = m.users.SaveUser(ctx, existingUser.Identifier, func(u *domain.User) (*domain.User, error) {
		user.CopyCalculatedAttributes(u)
		return user, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	if user.IsDisabled() && !existingUser.IsDisabled() {
		m.bus.Publish(app.TopicUserDisabled, user.Identifier)
	}

	return user, nil
}

// UpdateUserInternal persists a user in a system context, bypassing the
// modification checks. It is meant for internal bookkeeping updates such as
// the last login timestamp.
func (m Manager) UpdateUserInternal(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	err := m.users.SaveUser(ctx, user.Identifier, func(u *domain.User) (*domain.User, error) {
		user.CopyCalculatedAttributes(u)
		return user, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	return user, nil
}

func (m Manager) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := m.validateCreation(ctx, user); err != nil {
		return nil, fmt.Errorf("creation not allowed: %w", err)
	}

	if err := m.NewUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (m Manager) DeleteUser(ctx context.Context, id domain.UserIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	existingUser, err := m.users.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to find user %s: %w", id, err)
	}

	if err := m.validateDeletion(ctx, existingUser); err != nil {
		return fmt.Errorf("deletion not allowed: %w", err)
	}

	if err := m.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	m.bus.Publish(app.TopicUserDeleted, existingUser.Identifier)

	return nil
}

// SetUserDisabled toggles the disabled flag of a user.
func (m Manager) SetUserDisabled(ctx context.Context, id domain.UserIdentifier, disabled bool, reason string) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	currentUser := domain.GetUserInfo(ctx)
	if disabled && currentUser.Id == id {
		return errors.New("cannot disable own user")
	}

	err := m.users.SaveUser(ctx, id, func(u *domain.User) (*domain.User, error) {
		if disabled {
			now := time.Now()
			u.Disabled = &now
			u.DisabledReason = reason
		} else {
			u.Disabled = nil
			u.DisabledReason = ""
		}
		return u, nil
	})
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}

	if disabled {
		m.bus.Publish(app.TopicUserDisabled, id)
	}

	return nil
}

func (m Manager) validateModifications(ctx context.Context, old, upd *domain.User) error {
	currentUser := domain.GetUserInfo(ctx)

	if currentUser.Id != upd.Identifier && !currentUser.IsAdmin {
		return errors.New("insufficient permissions")
	}

	if !currentUser.IsAdmin && upd.IsAdmin != old.IsAdmin {
		return errors.New("cannot change own admin rights")
	}

	if currentUser.Id == old.Identifier && old.IsAdmin && !upd.IsAdmin {
		return errors.New("cannot remove own admin rights")
	}

	if currentUser.Id == old.Identifier && upd.IsDisabled() {
		return errors.New("cannot disable own user")
	}

	return nil
}

func (m Manager) validateCreation(_ context.Context, new *domain.User) error {
	if new.Identifier == "" {
		return errors.New("invalid user identifier")
	}

	if new.Identifier == "all" { // the all user identifier collides with the rest api routes
		return errors.New("reserved user identifier")
	}

	if string(new.Password) == "" {
		return errors.New("invalid password")
	}

	return nil
}

func (m Manager) validateDeletion(ctx context.Context, del *domain.User) error {
	currentUser := domain.GetUserInfo(ctx)

	if currentUser.Id == del.Identifier {
		return errors.New("cannot delete own user")
	}

	return nil
}

// BootstrapAdminUser ensures that the configured admin account exists.
func (m Manager) BootstrapAdminUser(ctx context.Context) error {
	if m.cfg.Core.AdminUser == "" {
		return nil
	}

	ctx = domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())

	_, err := m.users.GetUser(ctx, domain.UserIdentifier(m.cfg.Core.AdminUser))
	switch {
	case err == nil:
		return nil // admin user already exists
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	admin := &domain.User{
		Identifier: domain.UserIdentifier(m.cfg.Core.AdminUser),
		Email:      m.cfg.Core.AdminUser,
		FullName:   m.cfg.Core.AdminName,
		IsAdmin:    true,
		Role:       domain.RoleAdmin,
		Password:   domain.PrivateString(m.cfg.Core.AdminPassword),
	}
	if err := m.NewUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("created default admin user", "identifier", admin.Identifier)

	return nil
}
