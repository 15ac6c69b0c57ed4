package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/pkg/logger"
	"gorm.io/gorm"
)

// ArchiveWorker processes archive cascade jobs from the Redis queue
type ArchiveWorker struct {
	server   *asynq.Server
	archiver *ArchiveService
}

// NewArchiveWorker creates a new worker for processing archive jobs
func NewArchiveWorker(cfg *config.RedisConfig, db *gorm.DB) *ArchiveWorker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	return &ArchiveWorker{
		server:   server,
		archiver: NewArchiveService(db),
	}
}

// Start begins processing jobs (blocking, run in a goroutine)
func (w *ArchiveWorker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeArchiveCascade, w.handleArchiveCascade)

	logger.Infof("[ArchiveWorker] Starting archive cascade worker")
	return w.server.Run(mux)
}

// Stop gracefully shuts down the worker
func (w *ArchiveWorker) Stop() {
	logger.Infof("[ArchiveWorker] Shutting down")
	w.server.Shutdown()
}

func (w *ArchiveWorker) handleArchiveCascade(ctx context.Context, t *asynq.Task) error {
	var job ArchiveJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshal archive job: %w", err)
	}

	return w.archiver.CascadeArchive(ctx, &job)
}
