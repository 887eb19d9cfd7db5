package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"github.com/rjsears/n8n-nginx/backend/internal/nginx"
	"github.com/rjsears/n8n-nginx/backend/internal/services"
)

// AccessControlHandler exposes the IP-range access-control manager: list,
// add, delete (keyed by CIDR), defaults catalog and proxy reload.
type AccessControlHandler struct {
	service       *services.AccessControlService
	manager       *nginx.Manager
	notifications *services.NotificationService
}

func NewAccessControlHandler(service *services.AccessControlService, manager *nginx.Manager, notifications *services.NotificationService) *AccessControlHandler {
	return &AccessControlHandler{
		service:       service,
		manager:       manager,
		notifications: notifications,
	}
}

func (h *AccessControlHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/access-control", h.Get)
	r.GET("/access-control/defaults", h.Defaults)
	r.POST("/access-control/ranges", h.AddRange)
	r.DELETE("/access-control/ranges", h.DeleteRange)
	r.POST("/access-control/reload", h.Reload)
}

// Get handles GET /api/v1/access-control
func (h *AccessControlHandler) Get(c *gin.Context) {
	cfg, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Defaults handles GET /api/v1/access-control/defaults
func (h *AccessControlHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Defaults())
}

type addRangeRequest struct {
	CIDR        string `json:"cidr" binding:"required"`
	Description string `json:"description"`
	AccessLevel string `json:"access_level"`
}

// AddRange handles POST /api/v1/access-control/ranges
func (h *AccessControlHandler) AddRange(c *gin.Context) {
	var req addRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.service.AddRange(models.IPRange{
		CIDR:        req.CIDR,
		Description: req.Description,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateRange):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidCIDR), errors.Is(err, services.ErrInvalidAccessLevel):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.notifications.SendExternal(models.EventAccessControl, "IP range added",
		fmt.Sprintf("Range %s was added to the access-control set.", req.CIDR))

	c.JSON(http.StatusCreated, cfg)
}

// DeleteRange handles DELETE /api/v1/access-control/ranges?cidr=...
// The CIDR is the natural key and is passed as a query parameter because it
// contains a slash. The confirmation gate for this destructive action lives
// in the console UI; the API deletes unconditionally.
func (h *AccessControlHandler) DeleteRange(c *gin.Context) {
	cidr := c.Query("cidr")
	if cidr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cidr query parameter is required"})
		return
	}

	cfg, err := h.service.DeleteRange(cidr)
	if err != nil {
		if errors.Is(err, services.ErrRangeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.notifications.SendExternal(models.EventAccessControl, "IP range removed",
		fmt.Sprintf("Range %s was removed from the access-control set.", cidr))

	c.JSON(http.StatusOK, cfg)
}

// Reload handles POST /api/v1/access-control/reload
func (h *AccessControlHandler) Reload(c *gin.Context) {
	if err := h.manager.Apply(c.Request.Context()); err != nil {
		if errors.Is(err, nginx.ErrReload) {
			h.notifications.SendExternal(models.EventReload, "nginx reload failed", err.Error())
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "nginx configuration reloaded"})
}
