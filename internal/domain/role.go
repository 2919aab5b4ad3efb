package domain

import (
	"fmt"
	"strings"
)

// Role enumerates the company-scoped roles a user can hold.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleAgent, RoleCustomer:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role carries elevated ticket rights.
func (r Role) IsStaff() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleAgent:
		return true
	case RoleCustomer:
		return false
	default:
		return false
	}
}

// IsManager reports whether the role manages the whole company (owner or admin).
func (r Role) IsManager() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleAgent, RoleCustomer:
		return false
	default:
		return false
	}
}

// Assignable reports whether the role may be granted through role assignment.
// Ownership only changes hands through company creation.
func (r Role) Assignable() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	case RoleOwner:
		return false
	default:
		return false
	}
}
