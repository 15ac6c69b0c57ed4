package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// ProjectService handles project lifecycle and membership management
type ProjectService struct {
	db    *gorm.DB
	guard *Guard
	queue ArchiveQueue
}

// NewProjectService creates a new project service
func NewProjectService(db *gorm.DB, queue ArchiveQueue) *ProjectService {
	return &ProjectService{
		db:    db,
		guard: NewGuard(db),
		queue: queue,
	}
}

// Create creates a project owned by the actor. The owner is seeded as an
// ADMIN member in the same transaction so a project is never memberless.
func (s *ProjectService) Create(actorID uint, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, response.NewBadRequest("project name is required")
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     actorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		membership := &models.Membership{
			ProjectID: project.ID,
			UserID:    actorID,
			Role:      models.RoleAdmin,
			AddedBy:   actorID,
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		logger.Errorf("Failed to create project: %v", err)
		return nil, response.NewServerError("failed to create project")
	}

	return s.loadProject(project.ID)
}

// List returns the projects the actor is a member of, newest first.
// Archived projects are excluded.
func (s *ProjectService) List(actorID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Joins("JOIN memberships ON memberships.project_id = projects.id").
		Where("memberships.user_id = ? AND projects.is_archived = ?", actorID, false).
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, response.NewServerError("failed to list projects")
	}
	return projects, nil
}

// GetByID returns a project the actor is a member of. Archived projects
// remain readable by id.
func (s *ProjectService) GetByID(projectID, actorID uint) (*models.Project, error) {
	if _, err := s.guard.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}
	return s.loadProject(projectID)
}

// Update modifies a project's name and description. Requires ADMIN role.
func (s *ProjectService) Update(projectID, actorID uint, name, description *string) (*models.Project, error) {
	if _, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return nil, response.NewBadRequest("project name cannot be empty")
		}
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
			return nil, response.NewServerError("failed to update project")
		}
	}

	return s.loadProject(projectID)
}

// Archive soft-deletes a project and enqueues the cascade that archives
// its tasks and notes. Requires ADMIN role. Archiving an already
// archived project is a no-op.
func (s *ProjectService) Archive(projectID, actorID uint) error {
	project, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if project.IsArchived {
		return nil
	}

	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Update("is_archived", true).Error; err != nil {
		return response.NewServerError("failed to archive project")
	}

	if s.queue != nil {
		job := &ArchiveJob{ProjectID: projectID, ArchivedBy: actorID}
		if err := s.queue.Enqueue(job); err != nil {
			// The project stays archived; the cascade can be replayed.
			logger.Errorf("Failed to enqueue archive cascade for project %d: %v", projectID, err)
		}
	}

	return nil
}

// AddMember adds a user to a project with the given role. Requires ADMIN
// role. Adding an existing member is rejected; a concurrent duplicate
// insert is caught by the unique index and reported as a conflict.
func (s *ProjectService) AddMember(projectID, actorID, userID uint, role models.Role) (*models.Membership, error) {
	if !role.Valid() {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid role: %s", role))
	}

	project, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewServerError("failed to look up user")
	}

	if project.IsMember(userID) {
		return nil, response.NewBadRequest("user is already a member of this project")
	}

	membership := &models.Membership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedBy:   actorID,
	}
	if err := s.db.Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		logger.Errorf("Failed to add member %d to project %d: %v", userID, projectID, err)
		return nil, response.NewServerError("failed to add member")
	}

	if err := s.db.Preload("User").First(membership, membership.ID).Error; err != nil {
		return nil, response.NewServerError("failed to load membership")
	}
	return membership, nil
}

// RemoveMember removes a user from a project. Requires ADMIN role.
// Removing a non-member succeeds without effect. Removing the last
// ADMIN is permitted and leaves the project without an administrator.
func (s *ProjectService) RemoveMember(projectID, actorID, userID uint) error {
	if _, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin); err != nil {
		return err
	}

	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Membership{}).Error
	if err != nil {
		return response.NewServerError("failed to remove member")
	}
	return nil
}

// UpdateMemberRole changes an existing member's role. Requires ADMIN role.
func (s *ProjectService) UpdateMemberRole(projectID, actorID, userID uint, role models.Role) (*models.Membership, error) {
	if !role.Valid() {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid role: %s", role))
	}

	if _, err := s.guard.RequireRole(projectID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	var membership models.Membership
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, response.NewServerError("failed to look up membership")
	}

	if err := s.db.Model(&membership).Update("role", role).Error; err != nil {
		return nil, response.NewServerError("failed to update member role")
	}

	if err := s.db.Preload("User").First(&membership, membership.ID).Error; err != nil {
		return nil, response.NewServerError("failed to load membership")
	}
	return &membership, nil
}

// ListMembers returns a project's memberships with user info. Any member
// can list.
func (s *ProjectService) ListMembers(projectID, actorID uint) ([]models.Membership, error) {
	if _, err := s.guard.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}

	var members []models.Membership
	err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, response.NewServerError("failed to list members")
	}
	return members, nil
}

func (s *ProjectService) loadProject(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewServerError("failed to load project")
	}
	return &project, nil
}
