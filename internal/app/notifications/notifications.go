// Package notifications delivers user-facing messages: an in-app notification
// feed with automatic expiry and eviction, plus optional email delivery.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

// region dependencies

type NotificationDatabaseRepo interface {
	GetNotification(ctx context.Context, id domain.NotificationIdentifier) (*domain.Notification, error)
	GetUserNotifications(ctx context.Context, id domain.UserIdentifier) ([]domain.Notification, error)
	SaveNotification(
		ctx context.Context,
		id domain.NotificationIdentifier,
		updateFunc func(n *domain.Notification) (*domain.Notification, error),
	) error
	DeleteNotification(ctx context.Context, id domain.NotificationIdentifier) error
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int, error)
}

type UserDatabaseRepo interface {
	GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error)
}

type Mailer interface {
	Send(ctx context.Context, subject, body string, to []string) error
}

// endregion dependencies

const (
	// maxPerUser bounds the notification feed of a single user. Older entries
	// are evicted when the bound is exceeded.
	maxPerUser = 100

	// defaultRetention is applied to non-persistent notifications without an
	// explicit expiry.
	defaultRetention = 30 * 24 * time.Hour

	cleanupInterval = time.Hour
)

type Manager struct {
	cfg *config.Config
	bus evbus.MessageBus

	notifications NotificationDatabaseRepo
	users         UserDatabaseRepo
	mailer        Mailer
}

func NewNotificationManager(
	cfg *config.Config,
	bus evbus.MessageBus,
	notifications NotificationDatabaseRepo,
	users UserDatabaseRepo,
	mailer Mailer,
) (*Manager, error) {
	m := &Manager{
		cfg: cfg,
		bus: bus,

		notifications: notifications,
		users:         users,
		mailer:        mailer,
	}

	if err := m.connectToMessageBus(); err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return m, nil
}

func (m Manager) connectToMessageBus() error {
	if err := m.bus.Subscribe(app.TopicUserRegistered, m.handleUserRegisteredEvent); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", app.TopicUserRegistered, err)
	}
	if err := m.bus.Subscribe(app.TopicAttemptGraded, m.handleAttemptGradedEvent); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", app.TopicAttemptGraded, err)
	}

	return nil
}

func (m Manager) handleUserRegisteredEvent(id domain.UserIdentifier) {
	ctx := domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())

	_, err := m.Notify(ctx, &domain.Notification{
		UserId:  id,
		Title:   "Welcome to " + m.cfg.Web.SiteTitle,
		Message: "Your account has been created. Pick a subject and generate your first mock test.",
		Type:    domain.NotificationInfo,
	})
	if err != nil {
		slog.Error("failed to create welcome notification", "identifier", id, "error", err)
	}
}

func (m Manager) handleAttemptGradedEvent(attempt *domain.Attempt) {
	ctx := domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())

	_, err := m.Notify(ctx, &domain.Notification{
		UserId:  attempt.UserId,
		Title:   "Mock test graded",
		Message: fmt.Sprintf("You scored %d of %d marks (%.1f%%).", attempt.Score, attempt.MaxScore, attempt.Percentage),
		Type:    domain.NotificationSuccess,
	})
	if err != nil {
		slog.Error("failed to create grading notification", "identifier", attempt.UserId, "error", err)
	}
}

// StartBackgroundJobs begins the periodic cleanup of expired notifications.
// It returns once the jobs are scheduled.
func (m Manager) StartBackgroundJobs(ctx context.Context) {
	go m.runExpiryService(ctx)
}

func (m Manager) runExpiryService(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cleanupInterval):
		}

		deleted, err := m.notifications.DeleteExpiredNotifications(ctx, time.Now())
		if err != nil {
			slog.Error("failed to clean up expired notifications", "error", err)
			continue
		}
		if deleted > 0 {
			slog.Debug("cleaned up expired notifications", "count", deleted)
		}
	}
}

// Notify creates a notification for the given user. Non-persistent
// notifications without an expiry get the default retention. If the user
// opted in, the notification is also sent by mail.
func (m Manager) Notify(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	if notification.UserId == "" {
		return nil, fmt.Errorf("missing notification recipient: %w", domain.ErrInvalidData)
	}
	if notification.Message == "" {
		return nil, fmt.Errorf("missing notification message: %w", domain.ErrInvalidData)
	}
	if notification.Type == "" {
		notification.Type = domain.NotificationInfo
	}
	if notification.Identifier == "" {
		notification.Identifier = domain.NotificationIdentifier(uuid.New().String())
	}
	if !notification.Persistent && notification.ExpiresAt == nil {
		expiresAt := time.Now().Add(defaultRetention)
		notification.ExpiresAt = &expiresAt
	}

	err := m.notifications.SaveNotification(ctx, notification.Identifier,
		func(n *domain.Notification) (*domain.Notification, error) {
			n.Identifier = notification.Identifier
			n.UserId = notification.UserId
			n.Title = notification.Title
			n.Message = notification.Message
			n.Type = notification.Type
			n.Persistent = notification.Persistent
			n.ExpiresAt = notification.ExpiresAt
			return n, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	if err := m.evictOldest(ctx, notification.UserId); err != nil {
		slog.Warn("failed to evict old notifications", "identifier", notification.UserId, "error", err)
	}

	m.sendMail(ctx, notification)
	m.bus.Publish(app.TopicNotificationCreated, notification.Identifier)

	return notification, nil
}

// GetUserNotifications returns the feed of a user, newest first, with expired
// entries filtered out.
func (m Manager) GetUserNotifications(
	ctx context.Context,
	id domain.UserIdentifier,
) ([]domain.Notification, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	all, err := m.notifications.GetUserNotifications(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load notifications of user %s: %w", id, err)
	}

	now := time.Now()
	feed := make([]domain.Notification, 0, len(all))
	for _, notification := range all {
		if notification.IsExpired(now) {
			continue
		}
		feed = append(feed, notification)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})

	return feed, nil
}

// MarkRead flags a notification as read.
func (m Manager) MarkRead(ctx context.Context, id domain.NotificationIdentifier) error {
	notification, err := m.notifications.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load notification %s: %w", id, err)
	}
	if err := domain.ValidateUserAccessRights(ctx, notification.UserId); err != nil {
		return err
	}
	if notification.IsRead() {
		return nil
	}

	err = m.notifications.SaveNotification(ctx, id,
		func(n *domain.Notification) (*domain.Notification, error) {
			now := time.Now()
			n.ReadAt = &now
			return n, nil
		})
	if err != nil {
		return fmt.Errorf("failed to update notification %s: %w", id, err)
	}

	return nil
}

// Dismiss removes a notification from the feed.
func (m Manager) Dismiss(ctx context.Context, id domain.NotificationIdentifier) error {
	notification, err := m.notifications.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load notification %s: %w", id, err)
	}
	if err := domain.ValidateUserAccessRights(ctx, notification.UserId); err != nil {
		return err
	}

	if err := m.notifications.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}

	return nil
}

func (m Manager) evictOldest(ctx context.Context, id domain.UserIdentifier) error {
	all, err := m.notifications.GetUserNotifications(ctx, id)
	if err != nil {
		return err
	}
	if len(all) <= maxPerUser {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	for _, notification := range all[:len(all)-maxPerUser] {
		if err := m.notifications.DeleteNotification(ctx, notification.Identifier); err != nil {
			return err
		}
	}

	return nil
}

func (m Manager) sendMail(ctx context.Context, notification *domain.Notification) {
	if m.mailer == nil {
		return
	}

	loadCtx := domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
	user, err := m.users.GetUser(loadCtx, notification.UserId)
	if err != nil || !user.NotifyByEmail || user.Email == "" {
		return
	}

	subject := notification.Title
	if subject == "" {
		subject = fmt.Sprintf("%s notification", m.cfg.Web.SiteTitle)
	}
	if err := m.mailer.Send(ctx, subject, notification.Message, []string{user.Email}); err != nil {
		slog.Warn("failed to send notification mail",
			"identifier", notification.UserId, "error", err)
	}
}
