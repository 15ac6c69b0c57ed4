package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/services"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		taskService: services.NewTaskService(db),
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Priority      *string    `json:"priority"`
	AssigneeID    *uint      `json:"assignee_id"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
}

type CreateSubtaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateSubtaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

type AddAttachmentRequest struct {
	Name      string `json:"name" binding:"required"`
	URL       string `json:"url" binding:"required"`
	LocalPath string `json:"local_path"`
}

// taskView augments a task with its derived completion percentage
type taskView struct {
	*models.Task
	CompletionPercentage int `json:"completion_percentage"`
}

func viewOf(task *models.Task) taskView {
	return taskView{Task: task, CompletionPercentage: task.CompletionPercentage()}
}

// ListByProject returns a project's tasks
// GET /api/projects/:id/tasks?status=&assignee_id=
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	filter := services.TaskFilter{
		Status: models.TaskStatus(c.Query("status")),
	}
	if raw := c.Query("assignee_id"); raw != "" {
		assigneeID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid assignee id")
			return
		}
		id := uint(assigneeID)
		filter.AssigneeID = &id
	}

	tasks, err := h.taskService.ListByProject(uint(projectID), middleware.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	views := make([]taskView, len(tasks))
	for i := range tasks {
		views[i] = viewOf(&tasks[i])
	}
	response.Success(c, views)
}

// Create creates a task in a project
// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(uint(projectID), middleware.GetUserID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, viewOf(task))
}

// GetByID returns a task by ID
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	task, err := h.taskService.GetByID(uint(id), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, viewOf(task))
}

// Update updates a task
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	in := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		in.Priority = &priority
	}

	task, err := h.taskService.Update(uint(id), middleware.GetUserID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, viewOf(task))
}

// Delete archives a task
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	if err := h.taskService.Archive(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"archived": true})
}

// AddSubtask adds a subtask
// POST /api/tasks/:id/subtasks
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subtask, err := h.taskService.AddSubtask(uint(id), middleware.GetUserID(c), req.Title, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, subtask)
}

// UpdateSubtask updates a subtask
// PUT /api/tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	subtaskID, err := strconv.ParseUint(c.Param("subtaskId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid subtask id")
		return
	}

	var req UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subtask, err := h.taskService.UpdateSubtask(uint(id), uint(subtaskID), middleware.GetUserID(c), services.UpdateSubtaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, subtask)
}

// DeleteSubtask removes a subtask
// DELETE /api/tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	subtaskID, err := strconv.ParseUint(c.Param("subtaskId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid subtask id")
		return
	}

	if err := h.taskService.DeleteSubtask(uint(id), uint(subtaskID), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// AddAttachment records a stored file against a task
// POST /api/tasks/:id/attachments
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req AddAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attachment, err := h.taskService.AddAttachment(uint(id), middleware.GetUserID(c), req.Name, req.URL, req.LocalPath)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, attachment)
}

// RemoveAttachment deletes an attachment
// DELETE /api/tasks/:id/attachments/:attachmentId
func (h *TaskHandler) RemoveAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	attachmentID, err := strconv.ParseUint(c.Param("attachmentId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid attachment id")
		return
	}

	if err := h.taskService.RemoveAttachment(uint(id), uint(attachmentID), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}
