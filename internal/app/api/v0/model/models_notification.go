package model

import (
	"time"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type Notification struct {
	Identifier string `json:"Identifier"`
	UserId     string `json:"UserId"`

	Title   string `json:"Title"`
	Message string `json:"Message"`
	Type    string `json:"Type"`

	Persistent bool       `json:"Persistent"`
	Read       bool       `json:"Read"`
	CreatedAt  time.Time  `json:"CreatedAt"`
	ExpiresAt  *time.Time `json:"ExpiresAt,omitempty"`
}

func NewNotification(src *domain.Notification) *Notification {
	return &Notification{
		Identifier: string(src.Identifier),
		UserId:     string(src.UserId),
		Title:      src.Title,
		Message:    src.Message,
		Type:       string(src.Type),
		Persistent: src.Persistent,
		Read:       src.IsRead(),
		CreatedAt:  src.CreatedAt,
		ExpiresAt:  src.ExpiresAt,
	}
}

func NewNotifications(src []domain.Notification) []Notification {
	results := make([]Notification, len(src))
	for i := range src {
		results[i] = *NewNotification(&src[i])
	}

	return results
}

// NotificationRequest is the payload for sending a notification to a user.
type NotificationRequest struct {
	UserId     string `json:"UserId" validate:"required"`
	Title      string `json:"Title"`
	Message    string `json:"Message" validate:"required"`
	Type       string `json:"Type"`
	Persistent bool   `json:"Persistent"`
}

func NewDomainNotification(src *NotificationRequest) *domain.Notification {
	return &domain.Notification{
		UserId:     domain.UserIdentifier(src.UserId),
		Title:      src.Title,
		Message:    src.Message,
		Type:       domain.NotificationType(src.Type),
		Persistent: src.Persistent,
	}
}
