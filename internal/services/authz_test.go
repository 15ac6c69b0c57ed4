package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/response"
)

// assertStatus fails unless err is an AppError with the given HTTP status
func assertStatus(t *testing.T, err error, want int) *response.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != want {
		t.Fatalf("expected status %d, got %d (%s)", want, appErr.HTTPStatus, appErr.Message)
	}
	return appErr
}

func TestGuardRequireMember(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, owner, "alpha")

	guard := NewGuard(db)

	if _, err := guard.RequireMember(project.ID, owner.ID); err != nil {
		t.Fatalf("owner should be a member: %v", err)
	}

	_, err := guard.RequireMember(project.ID, outsider.ID)
	assertStatus(t, err, http.StatusForbidden)
}

func TestGuardMissingProjectBeatsForbidden(t *testing.T) {
	db := setupTestDB(t)
	outsider := createTestUser(t, db, "outsider")

	guard := NewGuard(db)

	// A non-member probing a nonexistent project learns only that it
	// does not exist, never that they lack access to it.
	_, err := guard.RequireMember(9999, outsider.ID)
	assertStatus(t, err, http.StatusNotFound)

	_, err = guard.RequireRole(9999, outsider.ID, models.RoleAdmin)
	assertStatus(t, err, http.StatusNotFound)
}

func TestGuardRequireRole(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	pa := createTestUser(t, db, "lead")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)
	addTestMember(t, db, project, owner, pa, models.RoleProjectAdmin)

	guard := NewGuard(db)

	tests := []struct {
		name     string
		actorID  uint
		required models.Role
		wantErr  int // 0 means success
	}{
		{"admin passes admin gate", owner.ID, models.RoleAdmin, 0},
		{"admin passes lower gate", owner.ID, models.RoleMember, 0},
		{"project admin passes own gate", pa.ID, models.RoleProjectAdmin, 0},
		{"project admin fails admin gate", pa.ID, models.RoleAdmin, http.StatusForbidden},
		{"member passes member gate", member.ID, models.RoleMember, 0},
		{"member fails project admin gate", member.ID, models.RoleProjectAdmin, http.StatusForbidden},
		{"member fails admin gate", member.ID, models.RoleAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guard.RequireRole(project.ID, tt.actorID, tt.required)
			if tt.wantErr == 0 {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			assertStatus(t, err, tt.wantErr)
		})
	}
}

func TestGuardCorruptRoleFailsClosed(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	weird := createTestUser(t, db, "weird")
	project := createTestProject(t, db, owner, "alpha")

	// Bypass the service to plant an unknown role value.
	m := &models.Membership{ProjectID: project.ID, UserID: weird.ID, Role: "SUPERUSER", AddedBy: owner.ID}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to plant membership: %v", err)
	}

	guard := NewGuard(db)
	_, err := guard.RequireRole(project.ID, weird.ID, models.RoleMember)
	if err == nil {
		t.Fatal("unknown role must never authorize")
	}
}
