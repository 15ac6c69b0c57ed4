package main

import (
	"os"

	"github.com/robfig/cron/v3"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/services"
	"github.com/taskhive/backend/internal/utils"
	"github.com/taskhive/backend/pkg/logger"
)

// appServices holds the long-lived pieces wired up at startup.
type appServices struct {
	queue       services.ArchiveQueue
	worker      *services.ArchiveWorker
	cleanupCron *cron.Cron
}

// bootstrap initializes all application dependencies: database, queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitSystemLogger(db)
	cleanupCron := services.StartLogCleanupScheduler(db, cfg.Log.RetentionDays)

	// Archive cascade queue: Redis-backed when enabled, inline otherwise
	archiver := services.NewArchiveService(db)
	queue := services.InitArchiveQueue(cfg)
	if syncQueue, ok := queue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(archiver.CascadeArchive)
	}

	var worker *services.ArchiveWorker
	if queue.IsAsync() {
		worker = services.NewArchiveWorker(&cfg.Redis, db)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Errorf("Archive worker stopped: %v", err)
			}
		}()
	}

	// Seed the bootstrap account
	adminUser := os.Getenv("ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin123"
	}
	authService := services.NewAuthService(db, cfg.JWT.ExpireHour)
	if err := authService.CreateAdminIfNotExists(adminUser, adminPass); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		queue:       queue,
		worker:      worker,
		cleanupCron: cleanupCron,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.cleanupCron != nil {
		s.cleanupCron.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.queue != nil {
		s.queue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
