package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"github.com/rjsears/n8n-nginx/backend/internal/nginx"
)

var startTime = time.Now()

// SystemHandler serves the dashboard tiles: process uptime, memory, range
// counts and nginx reachability.
type SystemHandler struct {
	db      *gorm.DB
	manager *nginx.Manager
}

func NewSystemHandler(db *gorm.DB, manager *nginx.Manager) *SystemHandler {
	return &SystemHandler{db: db, manager: manager}
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatUptime renders a duration as d/h/m/s components.
func FormatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Status handles GET /api/v1/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	var rangeCount, unreadCount int64
	h.db.Model(&models.IPRange{}).Count(&rangeCount)
	h.db.Model(&models.Notification{}).Where("read = ?", false).Count(&unreadCount)

	nginxOK := false
	if h.manager != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		nginxOK = h.manager.Ping(ctx) == nil
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"uptime":               FormatUptime(time.Since(startTime)),
		"uptime_seconds":       int64(time.Since(startTime).Seconds()),
		"memory":               FormatBytes(mem.Alloc),
		"goroutines":           runtime.NumGoroutine(),
		"ip_ranges":            rangeCount,
		"unread_notifications": unreadCount,
		"nginx_ok":             nginxOK,
	})
}

// MyIP handles GET /api/v1/system/my-ip, echoing the caller's address so the
// console can pre-fill the add-range form.
func (h *SystemHandler) MyIP(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ip": c.ClientIP()})
}
