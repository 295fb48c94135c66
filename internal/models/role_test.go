package models

import (
	"slices"
	"testing"
)

func TestRole(t *testing.T) {
	t.Run("ParseRole", func(t *testing.T) {
		for _, r := range Roles {
			got, err := ParseRole(string(r))
			if err != nil || got != r {
				t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
			}
		}
		if _, err := ParseRole("owner"); err == nil {
			t.Error("expected error for unknown role")
		}
		if _, err := ParseRole(""); err == nil {
			t.Error("expected error for empty role")
		}
	})

	t.Run("Can", func(t *testing.T) {
		tests := []struct {
			role Role
			perm Permission
			want bool
		}{
			{RoleStudent, PermManageOwnLibrary, true},
			{RoleStudent, PermViewConsole, false},
			{RoleStudent, PermManageUsers, false},
			{RoleAdmin, PermViewConsole, true},
			{RoleAdmin, PermManageUsers, true},
			{RoleAdmin, PermGrantSuperAdmin, false},
			{RoleSuperAdmin, PermGrantSuperAdmin, true},
			{Role("guest"), PermManageOwnLibrary, false},
		}

		for _, tt := range tests {
			t.Run(string(tt.role)+"/"+tt.perm.String(), func(t *testing.T) {
				if got := tt.role.Can(tt.perm); got != tt.want {
					t.Errorf("Can() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("CanAssign", func(t *testing.T) {
		tests := []struct {
			name       string
			actor      Role
			actorID    string
			targetID   string
			targetRole Role
			newRole    Role
			want       bool
		}{
			{"super admin promotes student", RoleSuperAdmin, "a", "b", RoleStudent, RoleSuperAdmin, true},
			{"super admin demotes admin", RoleSuperAdmin, "a", "b", RoleAdmin, RoleStudent, true},
			{"super admin cannot change self", RoleSuperAdmin, "a", "a", RoleSuperAdmin, RoleStudent, false},
			{"admin promotes student to admin", RoleAdmin, "a", "b", RoleStudent, RoleAdmin, true},
			{"admin cannot grant super admin", RoleAdmin, "a", "b", RoleStudent, RoleSuperAdmin, false},
			{"admin cannot change admin", RoleAdmin, "a", "b", RoleAdmin, RoleStudent, false},
			{"admin cannot change self", RoleAdmin, "a", "a", RoleStudent, RoleStudent, false},
			{"student cannot change anyone", RoleStudent, "a", "b", RoleStudent, RoleAdmin, false},
			{"unknown new role", RoleSuperAdmin, "a", "b", RoleStudent, Role("owner"), false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := tt.actor.CanAssign(tt.actorID, tt.targetID, tt.targetRole, tt.newRole)
				if got != tt.want {
					t.Errorf("CanAssign() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("AssignableRoles", func(t *testing.T) {
		if got := RoleStudent.AssignableRoles(); len(got) != 0 {
			t.Errorf("student should assign nothing, got %v", got)
		}
		if got := RoleAdmin.AssignableRoles(); !slices.Equal(got, []Role{RoleStudent, RoleAdmin}) {
			t.Errorf("admin AssignableRoles() = %v", got)
		}
		if got := RoleSuperAdmin.AssignableRoles(); !slices.Equal(got, Roles) {
			t.Errorf("super admin AssignableRoles() = %v", got)
		}
	})
}
