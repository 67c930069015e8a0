package models

import (
	"time"

	"github.com/google/uuid"
)

type JSONB map[string]interface{}

// AuditLog is an immutable record of a privileged mutation. Entries are only
// ever appended; nothing in this codebase updates or deletes them.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Actor      *uuid.UUID `json:"actor" db:"actor"`
	Metadata   JSONB      `json:"metadata" db:"metadata"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Action constants for audit logs
const (
	ActionTenantCreate       = "TENANT_CREATE"
	ActionTenantUpdate       = "TENANT_UPDATE"
	ActionEmployeeCreate     = "EMPLOYEE_CREATE"
	ActionEmployeeDeactivate = "EMPLOYEE_DEACTIVATE"
	ActionCohortCreate       = "COHORT_CREATE"
	ActionCohortDelete       = "COHORT_DELETE"
	ActionCourseCreate       = "COURSE_CREATE"
	ActionCourseUpdate       = "COURSE_UPDATE"
	ActionCourseDelete       = "COURSE_DELETE"
	ActionModuleCreate       = "MODULE_CREATE"
	ActionModuleUpdate       = "MODULE_UPDATE"
	ActionModuleDelete       = "MODULE_DELETE"
	ActionContentCreate      = "CONTENT_CREATE"
	ActionContentUpdate      = "CONTENT_UPDATE"
	ActionContentDelete      = "CONTENT_DELETE"
	ActionAssignmentUpdate   = "ASSIGNMENT_UPDATE"
	ActionImportBulk         = "IMPORT_BULK"
)

// Entity type constants for audit logs
const (
	EntityTenant     = "tenant"
	EntityEmployee   = "employee"
	EntityCourse     = "course"
	EntityModule     = "module"
	EntityContent    = "content"
	EntityAssignment = "assignment"
	EntityCohort     = "cohort"
	EntitySystem     = "system"
)

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	Action     *string    `json:"action"`
	EntityType *string    `json:"entity_type"`
	EntityID   *string    `json:"entity_id"`
	Actor      *uuid.UUID `json:"actor"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
