package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/api/handlers"
	"github.com/rjsears/n8n-nginx/backend/internal/api/middleware"
	"github.com/rjsears/n8n-nginx/backend/internal/config"
	"github.com/rjsears/n8n-nginx/backend/internal/logger"
	"github.com/rjsears/n8n-nginx/backend/internal/metrics"
	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"github.com/rjsears/n8n-nginx/backend/internal/nginx"
	"github.com/rjsears/n8n-nginx/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.IPRange{},
		&models.NginxEvent{},
		&models.Setting{},
		&models.User{},
		&models.Notification{},
		&models.NotificationProvider{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	// Nginx collaborator
	reloader, err := newReloader(cfg)
	if err != nil {
		return fmt.Errorf("nginx reloader: %w", err)
	}
	manager := nginx.NewManager(reloader, db, cfg.NginxConfDir)

	// Services
	authService := services.NewAuthService(db, cfg)
	notificationService := services.NewNotificationService(db)
	accessControlService := services.NewAccessControlService(db, manager.ACLPath())

	if err := authService.EnsureAdmin("admin@localhost"); err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}

	authHandler := handlers.NewAuthHandler(authService, cfg.Environment == "production")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// Access control
		accessControlHandler := handlers.NewAccessControlHandler(accessControlService, manager, notificationService)
		accessControlHandler.RegisterRoutes(protected)

		// Settings
		settingsHandler := handlers.NewSettingsHandler(db)
		protected.GET("/settings", settingsHandler.GetSettings)
		protected.POST("/settings", settingsHandler.UpdateSetting)

		// Notifications
		notificationHandler := handlers.NewNotificationHandler(notificationService)
		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Notification providers
		notificationProviderHandler := handlers.NewNotificationProviderHandler(notificationService)
		protected.GET("/notifications/providers", notificationProviderHandler.List)
		protected.POST("/notifications/providers", notificationProviderHandler.Create)
		protected.PUT("/notifications/providers/:id", notificationProviderHandler.Update)
		protected.DELETE("/notifications/providers/:id", notificationProviderHandler.Delete)
		protected.POST("/notifications/providers/test", notificationProviderHandler.Test)

		// System info
		systemHandler := handlers.NewSystemHandler(db, manager)
		protected.GET("/system/status", systemHandler.Status)
		protected.GET("/system/my-ip", systemHandler.MyIP)
	}

	// Periodic reconcile: re-apply the generated ACL so the on-disk nginx
	// config never drifts from the database. Apply is idempotent, so doing
	// this on a schedule is safe.
	if cfg.ReconcileSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.ReconcileSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := manager.Apply(ctx); err != nil {
				logger.Log().WithError(err).Error("scheduled reconcile failed")
			}
		})
		if err != nil {
			return fmt.Errorf("schedule reconcile job: %w", err)
		}
		scheduler.Start()
	}

	// Initial apply once nginx is reachable.
	go func() {
		ctx := context.Background()
		timeout := time.After(30 * time.Second)
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-timeout:
				logger.Log().Warn("timeout waiting for nginx to be ready")
				return
			case <-ticker.C:
				if err := manager.Ping(ctx); err != nil {
					continue
				}
				if err := manager.Apply(ctx); err != nil {
					logger.Log().WithError(err).Error("failed to apply initial nginx config")
				} else {
					logger.Log().Info("applied initial nginx config")
				}
				return
			}
		}
	}()

	return nil
}

func newReloader(cfg config.Config) (nginx.Reloader, error) {
	switch cfg.NginxReloadMode {
	case "docker":
		return nginx.NewDockerReloader(cfg.NginxContainer)
	case "command":
		return nginx.NewCommandReloader(cfg.NginxBinary), nil
	default:
		return nil, fmt.Errorf("unknown nginx reload mode %q", cfg.NginxReloadMode)
	}
}
