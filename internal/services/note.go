package services

import (
	"errors"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// NoteService handles project notes. Notes are read by any member but
// written only by project ADMINs.
type NoteService struct {
	db    *gorm.DB
	guard *Guard
}

// NewNoteService creates a new note service
func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db, guard: NewGuard(db)}
}

// Create adds a note to a project. Requires ADMIN role.
func (s *NoteService) Create(projectID, actorID uint, title, content string) (*models.Note, error) {
	if _, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if title == "" {
		return nil, response.NewBadRequest("note title is required")
	}

	note := &models.Note{
		Title:         title,
		Content:       content,
		ProjectID:     projectID,
		CreatedBy:     actorID,
		LastUpdatedBy: actorID,
	}
	if err := s.db.Create(note).Error; err != nil {
		return nil, response.NewServerError("failed to create note")
	}

	return s.loadNote(note.ID)
}

// ListByProject returns a project's live notes, most recently updated
// first. Any member can read. Archived notes are excluded.
func (s *NoteService) ListByProject(projectID, actorID uint) ([]models.Note, error) {
	if _, err := s.guard.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}

	var notes []models.Note
	err := s.db.Where("project_id = ? AND is_archived = ?", projectID, false).
		Preload("Creator").
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, response.NewServerError("failed to list notes")
	}
	return notes, nil
}

// GetByID returns a note the actor may see. Archived notes remain
// readable by id.
func (s *NoteService) GetByID(noteID, actorID uint) (*models.Note, error) {
	note, err := s.loadNote(noteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(note.ProjectID, actorID); err != nil {
		return nil, err
	}
	return note, nil
}

// Update modifies a note's title and content and stamps the editor.
// Requires ADMIN role.
func (s *NoteService) Update(noteID, actorID uint, title, content *string) (*models.Note, error) {
	note, err := s.loadNote(noteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireRole(note.ProjectID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"last_updated_by": actorID}
	if title != nil {
		if *title == "" {
			return nil, response.NewBadRequest("note title cannot be empty")
		}
		updates["title"] = *title
	}
	if content != nil {
		updates["content"] = *content
	}

	if err := s.db.Model(&models.Note{}).Where("id = ?", noteID).Updates(updates).Error; err != nil {
		return nil, response.NewServerError("failed to update note")
	}

	return s.loadNote(noteID)
}

// Archive soft-deletes a note. Requires ADMIN role. Archiving an already
// archived note is a no-op.
func (s *NoteService) Archive(noteID, actorID uint) error {
	note, err := s.loadNote(noteID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireRole(note.ProjectID, actorID, models.RoleAdmin); err != nil {
		return err
	}

	if note.IsArchived {
		return nil
	}
	if err := s.db.Model(&models.Note{}).Where("id = ?", noteID).Update("is_archived", true).Error; err != nil {
		return response.NewServerError("failed to archive note")
	}
	return nil
}

func (s *NoteService) loadNote(noteID uint) (*models.Note, error) {
	var note models.Note
	err := s.db.Preload("Creator").First(&note, noteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("note not found")
		}
		return nil, response.NewServerError("failed to load note")
	}
	return &note, nil
}
