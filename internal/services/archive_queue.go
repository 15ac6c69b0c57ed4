package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/pkg/logger"
)

const (
	TaskTypeArchiveCascade = "archive:cascade"
)

// ArchiveJob carries a project archival cascade: archive every live task
// and note belonging to the project.
type ArchiveJob struct {
	ProjectID  uint `json:"project_id"`
	ArchivedBy uint `json:"archived_by"`
}

// ArchiveQueue defines the interface for archive cascade processing
type ArchiveQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(job *ArchiveJob) error
	// IsAsync returns true if the queue processes jobs asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global archive queue instance
var (
	globalArchiveQueue ArchiveQueue
	archiveQueueOnce   sync.Once
)

// InitArchiveQueue initializes the global archive queue based on config
func InitArchiveQueue(cfg *config.Config) ArchiveQueue {
	archiveQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[ArchiveQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalArchiveQueue = NewSyncQueue()
			} else {
				logger.Infof("[ArchiveQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalArchiveQueue = queue
			}
		} else {
			logger.Infof("[ArchiveQueue] Sync queue initialized (Redis disabled)")
			globalArchiveQueue = NewSyncQueue()
		}
	})
	return globalArchiveQueue
}

// GetArchiveQueue returns the global archive queue instance
func GetArchiveQueue() ArchiveQueue {
	return globalArchiveQueue
}

// AsyncQueue implements ArchiveQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an archive job to the async queue
func (q *AsyncQueue) Enqueue(job *ArchiveJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeArchiveCascade, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[ArchiveQueue] Job enqueued: id=%s, project_id=%d", info.ID, job.ProjectID)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements ArchiveQueue with in-process processing (no Redis).
// Jobs run inline in the caller's request: cascades are small (tens of rows)
// and callers expect the archive to be observable on return.
type SyncQueue struct {
	processor func(context.Context, *ArchiveJob) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process jobs synchronously
func (q *SyncQueue) SetProcessor(processor func(context.Context, *ArchiveJob) error) {
	q.processor = processor
}

// Enqueue processes the job immediately
func (q *SyncQueue) Enqueue(job *ArchiveJob) error {
	if q.processor == nil {
		logger.Infof("[SyncQueue] Warning: no processor set, job will be dropped")
		return nil
	}

	return q.processor(context.Background(), job)
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
