package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/logger"
	"gorm.io/gorm"
)

// ArchiveService performs project archival cascades
type ArchiveService struct {
	db *gorm.DB
}

// NewArchiveService creates a new archive service
func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// CascadeArchive archives every live task and note of a project. The
// project itself is already archived by the time this runs; re-running
// on an already cascaded project is a no-op.
func (s *ArchiveService) CascadeArchive(ctx context.Context, job *ArchiveJob) error {
	start := time.Now()

	var tasksArchived, notesArchived int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("project_id = ? AND is_archived = ?", job.ProjectID, false).
			Update("is_archived", true)
		if res.Error != nil {
			return res.Error
		}
		tasksArchived = res.RowsAffected

		res = tx.Model(&models.Note{}).
			Where("project_id = ? AND is_archived = ?", job.ProjectID, false).
			Update("is_archived", true)
		if res.Error != nil {
			return res.Error
		}
		notesArchived = res.RowsAffected

		return nil
	})
	if err != nil {
		logger.Errorf("[Archive] Cascade failed for project %d: %v", job.ProjectID, err)
		return err
	}

	logger.Infof("[Archive] Project %d cascade complete: %d tasks, %d notes archived in %v",
		job.ProjectID, tasksArchived, notesArchived, time.Since(start))

	actor := job.ArchivedBy
	LogInfo("archive", "cascade",
		fmt.Sprintf("archived project %d cascade: %d tasks, %d notes", job.ProjectID, tasksArchived, notesArchived),
		&actor, "", "", map[string]interface{}{
			"project_id":     job.ProjectID,
			"tasks_archived": tasksArchived,
			"notes_archived": notesArchived,
		})

	return nil
}
