package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"github.com/rjsears/n8n-nginx/backend/internal/services"
)

func setupNotificationRouter(t *testing.T) (*gin.Engine, *services.NotificationService) {
	gin.SetMode(gin.TestMode)

	svc := services.NewNotificationService(setupHandlerDB(t))
	handler := NewNotificationHandler(svc)
	providerHandler := NewNotificationProviderHandler(svc)

	router := gin.New()
	router.GET("/api/v1/notifications", handler.List)
	router.POST("/api/v1/notifications/:id/read", handler.MarkAsRead)
	router.POST("/api/v1/notifications/read-all", handler.MarkAllAsRead)
	router.GET("/api/v1/notifications/providers", providerHandler.List)
	router.POST("/api/v1/notifications/providers", providerHandler.Create)
	router.PUT("/api/v1/notifications/providers/:id", providerHandler.Update)
	router.DELETE("/api/v1/notifications/providers/:id", providerHandler.Delete)
	return router, svc
}

func TestNotificationHandler_ListAndRead(t *testing.T) {
	router, svc := setupNotificationRouter(t)

	created, err := svc.Create(models.EventReload, models.NotificationTypeWarning, "Reload failed", "nginx -t exited 1")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)

	w = doJSON(t, router, http.MethodPost, "/api/v1/notifications/"+created.ID+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
	assert.Empty(t, notifications)
}

func TestNotificationProviderHandler_CRUD(t *testing.T) {
	router, _ := setupNotificationRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/notifications/providers", gin.H{
		"name": "Ops Discord", "type": "discord",
		"url": "https://discord.com/api/webhooks/1/a", "enabled": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var provider models.NotificationProvider
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &provider))
	require.NotEmpty(t, provider.ID)

	w = doJSON(t, router, http.MethodPut, "/api/v1/notifications/providers/"+provider.ID, gin.H{
		"name": "Ops Discord", "type": "discord", "url": provider.URL, "enabled": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/notifications/providers/missing", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/notifications/providers/"+provider.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/notifications/providers/"+provider.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
