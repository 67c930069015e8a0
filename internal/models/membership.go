package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership grants a profile a role inside one tenant. Nothing at the data
// layer stops a user from holding two memberships in the same tenant; the
// setup flow checks before inserting, which leaves a race between concurrent
// setups. Kept as-is deliberately.
type Membership struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role constants for tenant memberships
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleTrainer  = "trainer"
	RoleEmployee = "employee"
)

// ValidRole reports whether s is one of the known membership roles.
func ValidRole(s string) bool {
	switch s {
	case RoleOwner, RoleAdmin, RoleTrainer, RoleEmployee:
		return true
	}
	return false
}
