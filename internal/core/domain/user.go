package domain

import (
	"fmt"
	"slices"
)

// Role is one of the three fixed authorization levels known to the backend.
type Role string

const (
	RoleAdmin          Role = "Administrator"
	RoleDepartmentLead Role = "Abteilungsleiter"
	RoleStaff          Role = "Mitarbeiter"
)

// Roles lists every valid role, lowest privilege first.
var Roles = []Role{RoleStaff, RoleDepartmentLead, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// User models an account as returned by the backend.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
