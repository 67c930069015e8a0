package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is the edge granting an employee visibility into one course.
// Rows are only ever written by the assignment reconciler.
type Assignment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	CourseID   uuid.UUID `json:"course_id" db:"course_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
