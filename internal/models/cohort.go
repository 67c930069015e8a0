package models

import (
	"time"

	"github.com/google/uuid"
)

// Cohort is a named group of employees inside a tenant, used to organize
// assignment work for whole teams at once.
type Cohort struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
