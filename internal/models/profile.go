package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the authenticated principal. Rows are created at signup or by
// employee provisioning; the tenant-scoped core only ever reads them.
type Profile struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	FullName           string    `json:"full_name" db:"full_name"`
	PasswordHash       string    `json:"-" db:"password_hash"` // Never serialize in JSON
	ForcePasswordReset bool      `json:"force_password_reset" db:"force_password_reset"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
