package models

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleStudent, RoleAdmin, RoleSuperAdmin}

// ParseRole validates s. An empty string is rejected.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Permission names an action gated by role.
type Permission int

const (
	// PermManageOwnLibrary covers reading and editing one's own books and wishlist.
	PermManageOwnLibrary Permission = iota
	// PermViewConsole allows opening the management console.
	PermViewConsole
	// PermManageUsers allows changing the roles of other accounts.
	PermManageUsers
	// PermGrantSuperAdmin allows promoting an account to super_admin.
	PermGrantSuperAdmin
)

func (p Permission) String() string {
	switch p {
	case PermManageOwnLibrary:
		return "manage-own-library"
	case PermViewConsole:
		return "view-console"
	case PermManageUsers:
		return "manage-users"
	case PermGrantSuperAdmin:
		return "grant-super-admin"
	default:
		return fmt.Sprintf("permission(%d)", int(p))
	}
}

func (r Role) rank() int {
	switch r {
	case RoleStudent:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r.rank() > 0 }

// Can reports whether r holds permission p.
func (r Role) Can(p Permission) bool {
	switch p {
	case PermManageOwnLibrary:
		return r.Valid()
	case PermViewConsole, PermManageUsers:
		return r.rank() >= RoleAdmin.rank()
	case PermGrantSuperAdmin:
		return r == RoleSuperAdmin
	default:
		return false
	}
}

// CanAssign reports whether an actor with role r may change the account target (currently holding targetRole) to newRole.
//
// A super_admin may change any account other than their own. An admin may only change students and never grant super_admin.
func (r Role) CanAssign(actorID, targetID string, targetRole, newRole Role) bool {
	if !newRole.Valid() || actorID == targetID {
		return false
	}
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return targetRole == RoleStudent && newRole != RoleSuperAdmin
	default:
		return false
	}
}

// AssignableRoles returns the roles r may grant, in order.
func (r Role) AssignableRoles() []Role {
	if !r.Can(PermManageUsers) {
		return nil
	}
	if r.Can(PermGrantSuperAdmin) {
		return Roles
	}
	return []Role{RoleStudent, RoleAdmin}
}

func (r Role) String() string { return string(r) }
