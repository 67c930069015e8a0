package models

import (
	"time"

	"github.com/google/uuid"
)

type ContentItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ModuleID      uuid.UUID `json:"module_id" db:"module_id"`
	Title         string    `json:"title" db:"title"`
	URL           string    `json:"url" db:"url"`
	Type          string    `json:"type" db:"type"`
	ContentSource string    `json:"content_source" db:"content_source"`
	StoragePath   *string   `json:"storage_path" db:"storage_path"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Content type constants
const (
	ContentTypeYoutube = "youtube"
	ContentTypePDF     = "pdf"
	ContentTypePPT     = "ppt"
	ContentTypeLink    = "link"
	ContentTypeDoc     = "doc"
	ContentTypeImage   = "image"
	ContentTypeVideo   = "video"
	ContentTypeZip     = "zip"
)

// Content source constants
const (
	ContentSourceExternal = "external"
	ContentSourceStorage  = "storage"
)

// ValidContentType reports whether s is one of the accepted content types.
func ValidContentType(s string) bool {
	switch s {
	case ContentTypeYoutube, ContentTypePDF, ContentTypePPT, ContentTypeLink,
		ContentTypeDoc, ContentTypeImage, ContentTypeVideo, ContentTypeZip:
		return true
	}
	return false
}

// ValidImportContentType is the stricter enum accepted by bulk import.
func ValidImportContentType(s string) bool {
	switch s {
	case ContentTypeYoutube, ContentTypePDF, ContentTypePPT, ContentTypeLink:
		return true
	}
	return false
}
