package services

import (
	"errors"
	"time"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// TaskService handles tasks, subtasks and attachments
type TaskService struct {
	db    *gorm.DB
	guard *Guard
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, guard: NewGuard(db)}
}

// CreateTaskInput carries the writable fields of a new task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	AssigneeID  *uint
	DueDate     *time.Time
}

// UpdateTaskInput carries the updatable fields of a task. Nil fields are
// left unchanged.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssigneeID    *uint
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

// TaskFilter narrows task listings
type TaskFilter struct {
	Status     models.TaskStatus
	AssigneeID *uint
}

// Create creates a task in a project. Any member can create. The assignee,
// when set, must itself be a project member.
func (s *TaskService) Create(projectID, actorID uint, in CreateTaskInput) (*models.Task, error) {
	project, err := s.guard.RequireMember(projectID, actorID)
	if err != nil {
		return nil, err
	}

	if in.Title == "" {
		return nil, response.NewBadRequest("task title is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, response.NewBadRequest("invalid priority")
	}
	if in.AssigneeID != nil && !project.IsMember(*in.AssigneeID) {
		return nil, response.NewBadRequest("assignee must be a project member")
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   projectID,
		Status:      models.StatusTodo,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		CreatedBy:   actorID,
	}
	if err := s.db.Create(task).Error; err != nil {
		logger.Errorf("Failed to create task in project %d: %v", projectID, err)
		return nil, response.NewServerError("failed to create task")
	}

	return s.loadTask(task.ID)
}

// ListByProject returns a project's live tasks, optionally filtered by
// status and assignee. Archived tasks are excluded.
func (s *TaskService) ListByProject(projectID, actorID uint, filter TaskFilter) ([]models.Task, error) {
	if _, err := s.guard.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}

	query := s.db.Where("project_id = ? AND is_archived = ?", projectID, false)
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, response.NewBadRequest("invalid status filter")
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tasks []models.Task
	err := query.
		Preload("Assignee").
		Preload("Subtasks").
		Preload("Attachments").
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, response.NewServerError("failed to list tasks")
	}
	return tasks, nil
}

// GetByID returns a task the actor may see. Archived tasks remain
// readable by id.
func (s *TaskService) GetByID(taskID, actorID uint) (*models.Task, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(task.ProjectID, actorID); err != nil {
		return nil, err
	}
	return task, nil
}

// Update modifies a task. Any member can update. An explicitly set status
// only survives while no subtask is completed; otherwise the derived
// status wins.
func (s *TaskService) Update(taskID, actorID uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.guard.RequireMember(task.ProjectID, actorID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, response.NewBadRequest("task title cannot be empty")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, response.NewBadRequest("invalid status")
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, response.NewBadRequest("invalid priority")
		}
		task.Priority = *in.Priority
	}
	if in.ClearAssignee {
		task.AssigneeID = nil
	} else if in.AssigneeID != nil {
		if !project.IsMember(*in.AssigneeID) {
			return nil, response.NewBadRequest("assignee must be a project member")
		}
		task.AssigneeID = in.AssigneeID
	}
	if in.ClearDueDate {
		task.DueDate = nil
	} else if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	task.RecomputeStatus()

	err = s.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"assignee_id": task.AssigneeID,
		"due_date":    task.DueDate,
	}).Error
	if err != nil {
		return nil, response.NewServerError("failed to update task")
	}

	return s.loadTask(taskID)
}

// Archive soft-deletes a task. Requires PROJECT_ADMIN role. Archiving an
// already archived task is a no-op.
func (s *TaskService) Archive(taskID, actorID uint) error {
	task, err := s.loadTask(taskID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireRole(task.ProjectID, actorID, models.RoleProjectAdmin); err != nil {
		return err
	}

	if task.IsArchived {
		return nil
	}
	if err := s.db.Model(&models.Task{}).Where("id = ?", taskID).Update("is_archived", true).Error; err != nil {
		return response.NewServerError("failed to archive task")
	}
	return nil
}

// AddAttachment records a stored file against a task. Any member can attach.
func (s *TaskService) AddAttachment(taskID, actorID uint, name, url, localPath string) (*models.Attachment, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(task.ProjectID, actorID); err != nil {
		return nil, err
	}

	if name == "" || url == "" {
		return nil, response.NewBadRequest("attachment name and url are required")
	}

	attachment := &models.Attachment{
		TaskID:     taskID,
		Name:       name,
		URL:        url,
		LocalPath:  localPath,
		UploadedBy: actorID,
	}
	if err := s.db.Create(attachment).Error; err != nil {
		return nil, response.NewServerError("failed to add attachment")
	}
	return attachment, nil
}

// RemoveAttachment deletes an attachment record. Requires PROJECT_ADMIN
// role. The deletion is hard; attachments are not archived.
func (s *TaskService) RemoveAttachment(taskID, attachmentID, actorID uint) error {
	task, err := s.loadTask(taskID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireRole(task.ProjectID, actorID, models.RoleProjectAdmin); err != nil {
		return err
	}

	var attachment models.Attachment
	err = s.db.Where("id = ? AND task_id = ?", attachmentID, taskID).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("attachment not found")
		}
		return response.NewServerError("failed to look up attachment")
	}

	if err := s.db.Delete(&attachment).Error; err != nil {
		return response.NewServerError("failed to remove attachment")
	}
	return nil
}

// AddSubtask adds a subtask to a task. Any member can add. The parent
// task status is re-derived afterwards.
func (s *TaskService) AddSubtask(taskID, actorID uint, title, description string) (*models.Subtask, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(task.ProjectID, actorID); err != nil {
		return nil, err
	}

	if title == "" {
		return nil, response.NewBadRequest("subtask title is required")
	}

	subtask := &models.Subtask{
		TaskID:      taskID,
		Title:       title,
		Description: description,
		CreatedBy:   actorID,
	}
	if err := s.db.Create(subtask).Error; err != nil {
		return nil, response.NewServerError("failed to add subtask")
	}

	if err := s.recomputeTaskStatus(taskID); err != nil {
		return nil, err
	}
	return subtask, nil
}

// UpdateSubtaskInput carries subtask changes. Completion toggles are open
// to every member; retitling requires PROJECT_ADMIN.
type UpdateSubtaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// UpdateSubtask modifies a subtask. Completing stamps who and when;
// uncompleting clears both. The parent task status is re-derived.
func (s *TaskService) UpdateSubtask(taskID, subtaskID, actorID uint, in UpdateSubtaskInput) (*models.Subtask, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(task.ProjectID, actorID); err != nil {
		return nil, err
	}

	var subtask models.Subtask
	err = s.db.Where("id = ? AND task_id = ?", subtaskID, taskID).First(&subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("subtask not found")
		}
		return nil, response.NewServerError("failed to look up subtask")
	}

	if in.Title != nil || in.Description != nil {
		if _, err := s.guard.RequireRole(task.ProjectID, actorID, models.RoleProjectAdmin); err != nil {
			return nil, err
		}
		if in.Title != nil {
			if *in.Title == "" {
				return nil, response.NewBadRequest("subtask title cannot be empty")
			}
			subtask.Title = *in.Title
		}
		if in.Description != nil {
			subtask.Description = *in.Description
		}
	}

	if in.IsCompleted != nil && *in.IsCompleted != subtask.IsCompleted {
		subtask.IsCompleted = *in.IsCompleted
		if subtask.IsCompleted {
			now := time.Now()
			subtask.CompletedBy = &actorID
			subtask.CompletedAt = &now
		} else {
			subtask.CompletedBy = nil
			subtask.CompletedAt = nil
		}
	}

	err = s.db.Model(&models.Subtask{}).Where("id = ?", subtask.ID).Updates(map[string]interface{}{
		"title":        subtask.Title,
		"description":  subtask.Description,
		"is_completed": subtask.IsCompleted,
		"completed_by": subtask.CompletedBy,
		"completed_at": subtask.CompletedAt,
	}).Error
	if err != nil {
		return nil, response.NewServerError("failed to update subtask")
	}

	if err := s.recomputeTaskStatus(taskID); err != nil {
		return nil, err
	}
	return &subtask, nil
}

// DeleteSubtask removes a subtask. Requires PROJECT_ADMIN role. The
// parent task status is re-derived from the remaining subtasks.
func (s *TaskService) DeleteSubtask(taskID, subtaskID, actorID uint) error {
	task, err := s.loadTask(taskID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireRole(task.ProjectID, actorID, models.RoleProjectAdmin); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND task_id = ?", subtaskID, taskID).Delete(&models.Subtask{})
	if res.Error != nil {
		return response.NewServerError("failed to delete subtask")
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("subtask not found")
	}

	return s.recomputeTaskStatus(taskID)
}

// recomputeTaskStatus reloads the task with its subtasks, derives the
// status and persists it when it changed.
func (s *TaskService) recomputeTaskStatus(taskID uint) error {
	var task models.Task
	if err := s.db.Preload("Subtasks").First(&task, taskID).Error; err != nil {
		return response.NewServerError("failed to reload task")
	}

	before := task.Status
	task.RecomputeStatus()
	if task.Status == before {
		return nil
	}

	if err := s.db.Model(&models.Task{}).Where("id = ?", taskID).Update("status", task.Status).Error; err != nil {
		return response.NewServerError("failed to update task status")
	}
	return nil
}

func (s *TaskService) loadTask(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.
		Preload("Assignee").
		Preload("Creator").
		Preload("Subtasks").
		Preload("Attachments").
		First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, response.NewServerError("failed to load task")
	}
	return &task, nil
}
