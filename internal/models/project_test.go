package models

import "testing"

func memberProject() *Project {
	return &Project{
		ID:      1,
		Name:    "website",
		OwnerID: 10,
		Members: []Membership{
			{ProjectID: 1, UserID: 10, Role: RoleAdmin, AddedBy: 10},
			{ProjectID: 1, UserID: 11, Role: RoleProjectAdmin, AddedBy: 10},
			{ProjectID: 1, UserID: 12, Role: RoleMember, AddedBy: 11},
		},
	}
}

func TestProject_IsMember(t *testing.T) {
	p := memberProject()

	for _, id := range []uint{10, 11, 12} {
		if !p.IsMember(id) {
			t.Errorf("IsMember(%d) = false, expected true", id)
		}
	}
	if p.IsMember(99) {
		t.Error("IsMember(99) = true for non-member")
	}
}

func TestProject_RoleOf(t *testing.T) {
	p := memberProject()

	role, ok := p.RoleOf(11)
	if !ok {
		t.Fatal("RoleOf(11) reports not a member")
	}
	if role != RoleProjectAdmin {
		t.Errorf("RoleOf(11) = %s, expected PROJECT_ADMIN", role)
	}

	if _, ok := p.RoleOf(99); ok {
		t.Error("RoleOf(99) should report not a member")
	}
}

func TestProject_HasRole(t *testing.T) {
	p := memberProject()

	tests := []struct {
		userID   uint
		required Role
		want     bool
	}{
		{10, RoleAdmin, true},
		{10, RoleMember, true},
		{11, RoleAdmin, false},
		{11, RoleProjectAdmin, true},
		{12, RoleProjectAdmin, false},
		{12, RoleMember, true},
	}

	for _, tt := range tests {
		got, err := p.HasRole(tt.userID, tt.required)
		if err != nil {
			t.Fatalf("HasRole(%d, %s) error = %v", tt.userID, tt.required, err)
		}
		if got != tt.want {
			t.Errorf("HasRole(%d, %s) = %v, expected %v", tt.userID, tt.required, got, tt.want)
		}
	}
}

func TestProject_HasRole_NonMember(t *testing.T) {
	p := memberProject()

	got, err := p.HasRole(99, RoleMember)
	if err != nil {
		t.Fatalf("HasRole error = %v", err)
	}
	if got {
		t.Error("non-member should not satisfy any role")
	}
}

func TestProject_HasRole_CorruptRole(t *testing.T) {
	p := &Project{Members: []Membership{{UserID: 5, Role: "SUPERUSER"}}}

	if _, err := p.HasRole(5, RoleMember); err == nil {
		t.Error("role outside the enum should surface an error, not rank 0")
	}
}
