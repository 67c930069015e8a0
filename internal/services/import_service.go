package services

import (
	"context"
	"encoding/json"
	"fmt"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
)

// ImportError reports the first failure in a bulk import together with the
// counts accumulated before it. Nothing created before the failure is rolled
// back, and nothing after it is attempted.
type ImportError struct {
	Stats models.ImportStats
	Err   error
}

func (e *ImportError) Error() string { return e.Err.Error() }
func (e *ImportError) Unwrap() error { return e.Err }

// ImportService loads whole course trees from the JSON import document.
// Courses are processed sequentially so child rows can reference freshly
// created parent ids; the first error aborts the rest.
type ImportService interface {
	Import(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, raw []byte) (*models.ImportStats, error)
}

type importService struct {
	courseRepo  repositories.CourseRepository
	moduleRepo  repositories.ModuleRepository
	contentRepo repositories.ContentItemRepository
	auditSvc    AuditService
}

func NewImportService(courseRepo repositories.CourseRepository, moduleRepo repositories.ModuleRepository, contentRepo repositories.ContentItemRepository, auditSvc AuditService) ImportService {
	return &importService{
		courseRepo:  courseRepo,
		moduleRepo:  moduleRepo,
		contentRepo: contentRepo,
		auditSvc:    auditSvc,
	}
}

func validateImportDocument(doc *models.ImportDocument) error {
	if len(doc.Courses) == 0 {
		return fmt.Errorf("document contains no courses")
	}
	for _, c := range doc.Courses {
		if c.Title == "" {
			return fmt.Errorf("course title is required")
		}
		for _, m := range c.Modules {
			if m.Title == "" {
				return fmt.Errorf("module title is required in course %q", c.Title)
			}
			for _, item := range m.Content {
				if item.Title == "" {
					return fmt.Errorf("content title is required in module %q", m.Title)
				}
				if item.URL == "" {
					return fmt.Errorf("content url is required for %q", item.Title)
				}
				if !models.ValidImportContentType(item.Type) {
					return fmt.Errorf("invalid content type %q for %q", item.Type, item.Title)
				}
			}
		}
	}
	return nil
}

func (s *importService) Import(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, raw []byte) (*models.ImportStats, error) {
	var doc models.ImportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	if err := validateImportDocument(&doc); err != nil {
		return nil, err
	}

	stats := &models.ImportStats{}

	for _, c := range doc.Courses {
		course := &models.Course{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Title:       c.Title,
			Description: c.Description,
			Status:      models.CourseStatusDraft,
		}
		if err := s.courseRepo.Create(ctx, course); err != nil {
			return nil, &ImportError{Stats: *stats, Err: fmt.Errorf("failed to create course %s: %w", c.Title, err)}
		}
		stats.Courses++

		sortOrder := 1
		for _, m := range c.Modules {
			module := &models.Module{
				ID:          uuid.New(),
				TenantID:    tenantID,
				CourseID:    course.ID,
				Title:       m.Title,
				Description: m.Description,
				SortOrder:   sortOrder,
			}
			sortOrder++
			if err := s.moduleRepo.Create(ctx, module); err != nil {
				return nil, &ImportError{Stats: *stats, Err: fmt.Errorf("failed to create module %s: %w", m.Title, err)}
			}
			stats.Modules++

			for _, ic := range m.Content {
				item := &models.ContentItem{
					ID:            uuid.New(),
					TenantID:      tenantID,
					ModuleID:      module.ID,
					Title:         ic.Title,
					URL:           ic.URL,
					Type:          ic.Type,
					ContentSource: models.ContentSourceExternal,
				}
				if err := s.contentRepo.Create(ctx, item); err != nil {
					return nil, &ImportError{Stats: *stats, Err: fmt.Errorf("failed to create item %s: %w", ic.Title, err)}
				}
				stats.Items++
			}
		}
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionImportBulk, models.EntitySystem, "", actor, models.JSONB{
		"courses": stats.Courses,
		"modules": stats.Modules,
		"items":   stats.Items,
	})

	return stats, nil
}
