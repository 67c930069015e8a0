package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TenantContext is the per-request resolution of a URL slug plus the caller's
// role inside that tenant. A nil TenantContext means "no such accessible
// tenant" regardless of whether the tenant is missing, inactive, or the
// caller simply has no active membership.
type TenantContext struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Role     string    `json:"role"`
}

// CanManage reports whether the resolved role may use the admin route tree.
func (tc *TenantContext) CanManage() bool {
	switch tc.Role {
	case RoleOwner, RoleAdmin, RoleTrainer:
		return true
	}
	return false
}
