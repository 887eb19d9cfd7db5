package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationEvent classifies what part of the console raised a
// notification. Provider preferences filter external delivery on it.
type NotificationEvent string

const (
	EventAccessControl NotificationEvent = "access_control"
	EventReload        NotificationEvent = "reload"
	EventSystem        NotificationEvent = "system"
	EventTest          NotificationEvent = "test"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Notification is one entry in the console's internal feed: an IP range was
// added or removed, an nginx reload failed, the admin password was reset.
// External channels get their own copy through the providers.
type Notification struct {
	ID        string            `gorm:"primaryKey" json:"id"`
	Event     NotificationEvent `gorm:"index" json:"event"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Event == "" {
		n.Event = EventSystem
	}
	return
}
