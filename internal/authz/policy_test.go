package authz_test

import (
	"testing"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/authz"
)

func TestTaskAccess(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		caller  string
		owner   string
		read    bool
		update  bool
		delete_ bool
	}{
		{"owner", "user", "u1", "u1", true, true, false},
		{"stranger", "user", "u1", "u2", false, false, false},
		{"admin_not_owner", "admin", "a1", "u2", true, true, true},
		{"admin_owner", "admin", "a1", "a1", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanReadTask(tt.role, tt.caller, tt.owner); got != tt.read {
				t.Errorf("CanReadTask = %v, want %v", got, tt.read)
			}
			if got := authz.CanUpdateTask(tt.role, tt.caller, tt.owner); got != tt.update {
				t.Errorf("CanUpdateTask = %v, want %v", got, tt.update)
			}
			if got := authz.CanDeleteTask(tt.role); got != tt.delete_ {
				t.Errorf("CanDeleteTask = %v, want %v", got, tt.delete_)
			}
		})
	}
}

func TestScopeToOwner(t *testing.T) {
	if scope := authz.ScopeToOwner("admin", "a1"); scope != nil {
		t.Errorf("admin scope = %v, want nil", *scope)
	}

	scope := authz.ScopeToOwner("user", "u1")

	if scope == nil || *scope != "u1" {
		t.Errorf("user scope = %v, want u1", scope)
	}
}

func TestAdminSelfProtection(t *testing.T) {
	if authz.CanChangeRole("a1", "a1", "user") {
		t.Error("admin must not demote themselves")
	}

	if !authz.CanChangeRole("a2", "a1", "user") {
		t.Error("a second admin may demote another admin")
	}

	if !authz.CanChangeRole("a1", "a1", "admin") {
		t.Error("re-asserting own admin role is allowed")
	}

	if authz.CanDeleteUser("a1", "a1") {
		t.Error("admin must not delete themselves")
	}

	if !authz.CanDeleteUser("a1", "u2") {
		t.Error("admin may delete another user")
	}

	if authz.CanSetActive("a1", "a1", false) {
		t.Error("admin must not deactivate themselves")
	}

	if !authz.CanSetActive("a1", "a1", true) {
		t.Error("keeping own account active is allowed")
	}
}
