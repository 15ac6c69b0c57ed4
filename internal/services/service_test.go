package services

import (
	"path/filepath"
	"testing"

	"github.com/taskhive/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a throwaway sqlite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Task{},
		&models.Subtask{},
		&models.Attachment{},
		&models.Note{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "not-a-real-hash",
		Email:    username + "@example.com",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// createTestProject creates a project owned by owner, who becomes its
// first ADMIN member.
func createTestProject(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Project {
	t.Helper()

	svc := NewProjectService(db, nil)
	project, err := svc.Create(owner.ID, name, "")
	if err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func addTestMember(t *testing.T, db *gorm.DB, project *models.Project, actor, user *models.User, role models.Role) {
	t.Helper()

	svc := NewProjectService(db, nil)
	if _, err := svc.AddMember(project.ID, actor.ID, user.ID, role); err != nil {
		t.Fatalf("failed to add member %s: %v", user.Username, err)
	}
}
