package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// Guard is the authorization gate every project-scoped operation passes
// through. It resolves the owning project (with memberships loaded) and
// checks the actor against it. Existence is always checked before access:
// a missing project is NotFound, an existing one the actor may not touch is
// Forbidden. That ordering is part of the API contract.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// LoadProject fetches a project with its membership list, archived or not.
// Direct id lookup keeps working after archival.
func (g *Guard) LoadProject(projectID uint) (*models.Project, error) {
	var project models.Project
	err := g.db.Preload("Members").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("project not found")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// RequireMember returns the project when the actor is a member of it.
func (g *Guard) RequireMember(projectID, actorID uint) (*models.Project, error) {
	project, err := g.LoadProject(projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsMember(actorID) {
		return nil, response.NewForbidden("you don't have access to this project")
	}

	return project, nil
}

// RequireRole returns the project when the actor holds required or higher.
func (g *Guard) RequireRole(projectID, actorID uint, required models.Role) (*models.Project, error) {
	project, err := g.LoadProject(projectID)
	if err != nil {
		return nil, err
	}

	ok, err := project.HasRole(actorID, required)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, response.NewForbidden(fmt.Sprintf("you need %s role to perform this action", required))
	}

	return project, nil
}
