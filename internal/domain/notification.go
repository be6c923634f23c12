package domain

import "time"

type NotificationIdentifier string

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a message addressed to a single user. Non-persistent
// notifications expire automatically after their duration has elapsed.
type Notification struct {
	BaseModel

	Identifier NotificationIdentifier `gorm:"primaryKey;column:identifier"`
	UserId     UserIdentifier         `gorm:"index;column:user_id"`

	Title   string
	Message string
	Type    NotificationType

	Persistent bool
	ReadAt     *time.Time `gorm:"column:read_at"`
	ExpiresAt  *time.Time `gorm:"index;column:expires_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsExpired reports whether the notification should be removed at the given point in time.
// Persistent notifications never expire.
func (n *Notification) IsExpired(now time.Time) bool {
	if n.Persistent || n.ExpiresAt == nil {
		return false
	}
	return !n.ExpiresAt.After(now)
}
