package models

import (
	"math"
	"time"
)

// Task status values. Status is derived from subtasks on every save; an
// explicit value only survives while no subtask is completed.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one project and owns its subtasks and attachments.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	ProjectID   uint         `gorm:"not null;index" json:"project_id"`
	Status      TaskStatus   `gorm:"size:20;default:TODO;index" json:"status"`
	Priority    TaskPriority `gorm:"size:20;default:MEDIUM" json:"priority"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	DueDate     *time.Time   `json:"due_date"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
	Subtasks    []Subtask    `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	CreatedBy   uint         `json:"created_by"`
	Creator     *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	IsArchived  bool         `gorm:"default:false;index" json:"is_archived"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Subtask lives and dies with its parent task.
type Subtask struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedBy *uint      `json:"completed_by"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Subtask) TableName() string { return "subtasks" }

// Attachment records an already-stored file; upload bytes never pass
// through this service.
type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"not null;index" json:"task_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	LocalPath  string    `gorm:"size:500" json:"local_path"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }

// RecomputeStatus derives the task status from subtask completion:
// all complete → DONE, any complete → IN_PROGRESS, otherwise the explicitly
// set status stands. Called at the end of every mutation path that touches
// subtasks, before the task is saved.
func (t *Task) RecomputeStatus() {
	if len(t.Subtasks) == 0 {
		return
	}

	allCompleted := true
	someCompleted := false
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			someCompleted = true
		} else {
			allCompleted = false
		}
	}

	if allCompleted {
		t.Status = StatusDone
	} else if someCompleted {
		t.Status = StatusInProgress
	}
}

// CompletionPercentage returns round(100 * completed / total), 0 when the
// task has no subtasks.
func (t *Task) CompletionPercentage() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	completed := 0
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(t.Subtasks)) * 100))
}
