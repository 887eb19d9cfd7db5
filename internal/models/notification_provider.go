package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationProvider is an external delivery channel configured from the
// console's notifications panel.
type NotificationProvider struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // discord, slack, gotify, telegram, generic
	URL     string `json:"url"`  // shoutrrr URL
	Enabled bool   `json:"enabled"`

	// Notification preferences
	NotifyAccessControl bool `json:"notify_access_control" gorm:"default:true"`
	NotifyReload        bool `json:"notify_reload" gorm:"default:true"`
	NotifySystem        bool `json:"notify_system" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *NotificationProvider) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// Accepts reports whether this channel's preferences include the event.
// Test sends always go through.
func (n *NotificationProvider) Accepts(event NotificationEvent) bool {
	switch event {
	case EventAccessControl:
		return n.NotifyAccessControl
	case EventReload:
		return n.NotifyReload
	case EventSystem:
		return n.NotifySystem
	default:
		return true
	}
}
