package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/logger"
	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

var ErrProviderNotFound = errors.New("notification provider not found")

// NotificationService manages the internal notification feed and dispatches
// events to the configured external channels via shoutrrr.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

var discordWebhookRegex = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/(\d+)/([a-zA-Z0-9_-]+)`)

// normalizeURL converts raw webhook URLs pasted from the provider UI into
// shoutrrr service URLs where a known translation exists.
func normalizeURL(serviceType, rawURL string) string {
	if serviceType == "discord" {
		matches := discordWebhookRegex.FindStringSubmatch(rawURL)
		if len(matches) == 3 {
			id := matches[1]
			token := matches[2]
			return fmt.Sprintf("discord://%s@%s", token, id)
		}
	}
	return rawURL
}

// Internal Notifications (DB)

func (s *NotificationService) Create(event models.NotificationEvent, nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Event:   event,
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(id string) error {
	return s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Providers (external channels)

func (s *NotificationService) ListProviders() ([]models.NotificationProvider, error) {
	var providers []models.NotificationProvider
	result := s.DB.Order("created_at asc").Find(&providers)
	return providers, result.Error
}

func (s *NotificationService) CreateProvider(p *models.NotificationProvider) error {
	return s.DB.Create(p).Error
}

func (s *NotificationService) UpdateProvider(id string, updates *models.NotificationProvider) (*models.NotificationProvider, error) {
	var provider models.NotificationProvider
	if err := s.DB.Where("id = ?", id).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	provider.Name = updates.Name
	provider.Type = updates.Type
	provider.URL = updates.URL
	provider.Enabled = updates.Enabled
	provider.NotifyAccessControl = updates.NotifyAccessControl
	provider.NotifyReload = updates.NotifyReload
	provider.NotifySystem = updates.NotifySystem

	if err := s.DB.Save(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (s *NotificationService) DeleteProvider(id string) error {
	result := s.DB.Where("id = ?", id).Delete(&models.NotificationProvider{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// TestProvider sends a test message to a single (possibly unsaved) provider.
func (s *NotificationService) TestProvider(p *models.NotificationProvider) error {
	url := normalizeURL(p.Type, p.URL)
	msg := "Test notification\n\nIf you can read this, the channel is configured correctly."
	if err := shoutrrr.Send(url, msg); err != nil {
		return fmt.Errorf("send test notification: %w", err)
	}
	return nil
}

// SendExternal dispatches an event to every enabled provider whose
// preferences include it. Delivery is fire-and-forget; failures are logged,
// never retried.
func (s *NotificationService) SendExternal(event models.NotificationEvent, title, message string) {
	var providers []models.NotificationProvider
	if err := s.DB.Where("enabled = ?", true).Find(&providers).Error; err != nil {
		logger.Log().WithError(err).Error("fetch notification providers")
		return
	}

	for _, provider := range providers {
		if !provider.Accepts(event) {
			continue
		}

		go func(p models.NotificationProvider) {
			url := normalizeURL(p.Type, p.URL)
			msg := fmt.Sprintf("%s\n\n%s", title, message)
			if err := shoutrrr.Send(url, msg); err != nil {
				logger.WithFields(map[string]interface{}{"provider": p.Name}).
					WithError(err).Error("send external notification")
			}
		}(provider)
	}
}
