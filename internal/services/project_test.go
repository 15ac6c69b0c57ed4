package services

import (
	"net/http"
	"testing"

	"github.com/taskhive/backend/internal/models"
)

func TestProjectCreateSeedsOwnerAdmin(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")

	svc := NewProjectService(db, nil)
	project, err := svc.Create(owner.ID, "alpha", "first project")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if project.OwnerID != owner.ID {
		t.Errorf("expected owner %d, got %d", owner.ID, project.OwnerID)
	}
	if len(project.Members) != 1 {
		t.Fatalf("expected 1 seeded member, got %d", len(project.Members))
	}
	role, ok := project.RoleOf(owner.ID)
	if !ok {
		t.Fatal("owner is not a member of their own project")
	}
	if role != models.RoleAdmin {
		t.Errorf("expected owner role ADMIN, got %s", role)
	}
	if project.Members[0].AddedBy != owner.ID {
		t.Errorf("expected seeded membership added_by %d, got %d", owner.ID, project.Members[0].AddedBy)
	}
}

func TestProjectCreateRequiresName(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")

	svc := NewProjectService(db, nil)
	_, err := svc.Create(owner.ID, "", "")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestProjectListScopedToMember(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	svc := NewProjectService(db, nil)
	mine := createTestProject(t, db, owner, "mine")
	createTestProject(t, db, other, "theirs")

	projects, err := svc.List(owner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].ID != mine.ID {
		t.Errorf("expected project %d, got %d", mine.ID, projects[0].ID)
	}
}

func TestProjectArchiveHiddenFromListButReadable(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")

	svc := NewProjectService(db, nil)
	project := createTestProject(t, db, owner, "alpha")

	if err := svc.Archive(project.ID, owner.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	projects, err := svc.List(owner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("archived project still listed, got %d projects", len(projects))
	}

	got, err := svc.GetByID(project.ID, owner.ID)
	if err != nil {
		t.Fatalf("archived project should stay readable by id: %v", err)
	}
	if !got.IsArchived {
		t.Error("expected is_archived true")
	}

	// Archiving again is a no-op, not an error.
	if err := svc.Archive(project.ID, owner.ID); err != nil {
		t.Fatalf("second archive should be a no-op: %v", err)
	}
}

func TestProjectUpdateRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)

	svc := NewProjectService(db, nil)
	name := "renamed"

	_, err := svc.Update(project.ID, member.ID, &name, nil)
	assertStatus(t, err, http.StatusForbidden)

	updated, err := svc.Update(project.ID, owner.ID, &name, nil)
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("expected name renamed, got %s", updated.Name)
	}
}

func TestAddMemberDuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")

	svc := NewProjectService(db, nil)
	if _, err := svc.AddMember(project.ID, owner.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	_, err := svc.AddMember(project.ID, owner.ID, member.ID, models.RoleProjectAdmin)
	assertStatus(t, err, http.StatusBadRequest)

	// The duplicate attempt must not touch the stored role.
	var count int64
	db.Model(&models.Membership{}).Where("project_id = ? AND user_id = ?", project.ID, member.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 membership, got %d", count)
	}
	var m models.Membership
	db.Where("project_id = ? AND user_id = ?", project.ID, member.ID).First(&m)
	if m.Role != models.RoleMember {
		t.Errorf("duplicate add changed role to %s", m.Role)
	}
}

func TestAddMemberUniqueIndexClosesRace(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")

	// Simulate two requests passing the duplicate pre-check at once by
	// inserting the first membership after the check would have run.
	m := &models.Membership{ProjectID: project.ID, UserID: member.ID, Role: models.RoleMember, AddedBy: owner.ID}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}

	dup := &models.Membership{ProjectID: project.ID, UserID: member.ID, Role: models.RoleAdmin, AddedBy: owner.ID}
	if err := db.Create(dup).Error; err == nil {
		t.Fatal("unique index did not reject the duplicate membership")
	}
}

func TestAddMemberValidation(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)

	svc := NewProjectService(db, nil)

	// Unknown role fails before touching storage.
	_, err := svc.AddMember(project.ID, owner.ID, member.ID, "SUPERUSER")
	assertStatus(t, err, http.StatusBadRequest)

	// Unknown user.
	_, err = svc.AddMember(project.ID, owner.ID, 9999, models.RoleMember)
	assertStatus(t, err, http.StatusNotFound)

	// Non-admin actor.
	extra := createTestUser(t, db, "extra")
	_, err = svc.AddMember(project.ID, member.ID, extra.ID, models.RoleMember)
	assertStatus(t, err, http.StatusForbidden)
}

func TestRemoveMemberIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)

	svc := NewProjectService(db, nil)
	if err := svc.RemoveMember(project.ID, owner.ID, member.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	// Removing again, or removing someone who was never a member,
	// succeeds without effect.
	if err := svc.RemoveMember(project.ID, owner.ID, member.ID); err != nil {
		t.Fatalf("second remove should succeed: %v", err)
	}
	if err := svc.RemoveMember(project.ID, owner.ID, 9999); err != nil {
		t.Fatalf("removing a non-member should succeed: %v", err)
	}
}

func TestRemoveMemberLastAdminNotProtected(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner, "alpha")

	// An admin may remove themselves even as the only admin, leaving
	// the project without one.
	svc := NewProjectService(db, nil)
	if err := svc.RemoveMember(project.ID, owner.ID, owner.ID); err != nil {
		t.Fatalf("self-removal failed: %v", err)
	}

	var count int64
	db.Model(&models.Membership{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected 0 memberships, got %d", count)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)

	svc := NewProjectService(db, nil)

	updated, err := svc.UpdateMemberRole(project.ID, owner.ID, member.ID, models.RoleProjectAdmin)
	if err != nil {
		t.Fatalf("role update failed: %v", err)
	}
	if updated.Role != models.RoleProjectAdmin {
		t.Errorf("expected role PROJECT_ADMIN, got %s", updated.Role)
	}

	_, err = svc.UpdateMemberRole(project.ID, owner.ID, 9999, models.RoleMember)
	assertStatus(t, err, http.StatusNotFound)

	_, err = svc.UpdateMemberRole(project.ID, owner.ID, member.ID, "SUPERUSER")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestListMembersAnyMember(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, owner, "alpha")
	addTestMember(t, db, project, owner, member, models.RoleMember)

	svc := NewProjectService(db, nil)

	members, err := svc.ListMembers(project.ID, member.ID)
	if err != nil {
		t.Fatalf("list members failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	_, err = svc.ListMembers(project.ID, outsider.ID)
	assertStatus(t, err, http.StatusForbidden)
}

func TestProjectArchiveEnqueuesCascade(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")

	queue := NewSyncQueue()
	queue.SetProcessor(NewArchiveService(db).CascadeArchive)

	svc := NewProjectService(db, queue)
	project, err := svc.Create(owner.ID, "alpha", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tasks := NewTaskService(db)
	task, err := tasks.Create(project.ID, owner.ID, CreateTaskInput{Title: "t1"})
	if err != nil {
		t.Fatalf("task create failed: %v", err)
	}
	notes := NewNoteService(db)
	note, err := notes.Create(project.ID, owner.ID, "n1", "body")
	if err != nil {
		t.Fatalf("note create failed: %v", err)
	}

	if err := svc.Archive(project.ID, owner.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	var gotTask models.Task
	db.First(&gotTask, task.ID)
	if !gotTask.IsArchived {
		t.Error("cascade did not archive the project's task")
	}
	var gotNote models.Note
	db.First(&gotNote, note.ID)
	if !gotNote.IsArchived {
		t.Error("cascade did not archive the project's note")
	}
}
