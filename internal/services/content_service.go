package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

// ErrNoAccess is returned when the caller may not read the requested content
// item. Handlers translate it to a 403/404 without detail.
var ErrNoAccess = errors.New("no access to content item")

type CreateContentRequest struct {
	ModuleID      uuid.UUID `json:"module_id"`
	Title         string    `json:"title" validate:"required"`
	URL           string    `json:"url"`
	Type          string    `json:"type" validate:"required"`
	ContentSource string    `json:"content_source"`
	StoragePath   string    `json:"storage_path"`
}

type UpdateContentRequest struct {
	ID uuid.UUID
	CreateContentRequest
}

// ContentService owns content items and their stored files. The signed-URL
// path is the one place where a bare item id arrives from the client, so the
// access check there is explicit: fetch the row, then verify the caller's
// membership in the row's tenant as an independent step.
type ContentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateContentRequest) (*models.ContentItem, error)
	Update(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *UpdateContentRequest) error
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error
	ListByModule(ctx context.Context, tenantID, moduleID uuid.UUID) ([]*models.ContentItem, error)

	// AssignedModuleContent is the employee read path: the module's parent
	// course must be published and assigned to the caller, otherwise the
	// module does not exist as far as the caller can tell.
	AssignedModuleContent(ctx context.Context, tenantID, employeeID, moduleID uuid.UUID) ([]*models.ContentItem, error)

	// SignedURL verifies principal's access to the item and returns a
	// 15-minute download link. ErrNoAccess covers missing rows, missing
	// membership, and missing storage paths alike.
	SignedURL(ctx context.Context, principal *models.Profile, contentItemID uuid.UUID) (string, error)

	// UploadFile stores a file under the tenant's prefix and returns the
	// storage path for a subsequent content item create.
	UploadFile(ctx context.Context, tenantID, moduleID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
}

type contentService struct {
	contentRepo    repositories.ContentItemRepository
	moduleRepo     repositories.ModuleRepository
	courseRepo     repositories.CourseRepository
	assignmentRepo repositories.AssignmentRepository
	membershipRepo repositories.MembershipRepository
	storageSvc     StorageService
	auditSvc       AuditService
	bucket         string
}

func NewContentService(contentRepo repositories.ContentItemRepository, moduleRepo repositories.ModuleRepository, courseRepo repositories.CourseRepository, assignmentRepo repositories.AssignmentRepository, membershipRepo repositories.MembershipRepository, storageSvc StorageService, auditSvc AuditService, bucket string) ContentService {
	return &contentService{
		contentRepo:    contentRepo,
		moduleRepo:     moduleRepo,
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		membershipRepo: membershipRepo,
		storageSvc:     storageSvc,
		auditSvc:       auditSvc,
		bucket:         bucket,
	}
}

func validateContentRequest(req *CreateContentRequest) error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if !models.ValidContentType(req.Type) {
		return fmt.Errorf("invalid content type %q", req.Type)
	}
	if req.ContentSource == "" {
		req.ContentSource = models.ContentSourceExternal
	}
	if req.ContentSource != models.ContentSourceExternal && req.ContentSource != models.ContentSourceStorage {
		return fmt.Errorf("invalid content source %q", req.ContentSource)
	}
	if req.ContentSource == models.ContentSourceExternal && req.URL == "" {
		return errors.New("url is required for external content")
	}
	if req.ContentSource == models.ContentSourceStorage && req.StoragePath == "" {
		return errors.New("storage_path is required for stored content")
	}
	return nil
}

func (s *contentService) Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateContentRequest) (*models.ContentItem, error) {
	if err := validateContentRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.moduleRepo.GetByID(ctx, tenantID, req.ModuleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("module not found")
		}
		return nil, fmt.Errorf("failed to verify module: %w", err)
	}

	item := &models.ContentItem{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ModuleID:      req.ModuleID,
		Title:         req.Title,
		Type:          req.Type,
		ContentSource: req.ContentSource,
	}
	if req.ContentSource == models.ContentSourceExternal {
		item.URL = req.URL
	} else {
		sp := req.StoragePath
		item.StoragePath = &sp
	}

	if err := s.contentRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionContentCreate, models.EntityContent, item.ID.String(), actor, models.JSONB{
		"title":     item.Title,
		"module_id": item.ModuleID.String(),
	})
	return item, nil
}

func (s *contentService) Update(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *UpdateContentRequest) error {
	if err := validateContentRequest(&req.CreateContentRequest); err != nil {
		return err
	}

	item, err := s.contentRepo.Get(ctx, tenantID, req.ID)
	if err != nil {
		return err
	}

	item.Title = req.Title
	item.Type = req.Type
	item.ContentSource = req.ContentSource
	if req.ContentSource == models.ContentSourceExternal {
		item.URL = req.URL
		item.StoragePath = nil
	} else {
		item.URL = ""
		sp := req.StoragePath
		item.StoragePath = &sp
	}

	if err := s.contentRepo.Update(ctx, item); err != nil {
		return err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionContentUpdate, models.EntityContent, item.ID.String(), actor, models.JSONB{
		"title":     item.Title,
		"module_id": item.ModuleID.String(),
	})
	return nil
}

func (s *contentService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error {
	if err := s.contentRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionContentDelete, models.EntityContent, id.String(), actor, nil)
	return nil
}

func (s *contentService) ListByModule(ctx context.Context, tenantID, moduleID uuid.UUID) ([]*models.ContentItem, error) {
	return s.contentRepo.ListByModule(ctx, tenantID, moduleID)
}

func (s *contentService) AssignedModuleContent(ctx context.Context, tenantID, employeeID, moduleID uuid.UUID) ([]*models.ContentItem, error) {
	module, err := s.moduleRepo.GetByID(ctx, tenantID, moduleID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, tenantID, module.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.CourseStatusPublished {
		return nil, pgx.ErrNoRows
	}
	assigned, err := s.assignmentRepo.Exists(ctx, tenantID, employeeID, module.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignment: %w", err)
	}
	if !assigned {
		return nil, pgx.ErrNoRows
	}
	return s.contentRepo.ListByModule(ctx, tenantID, moduleID)
}

func (s *contentService) SignedURL(ctx context.Context, principal *models.Profile, contentItemID uuid.UUID) (string, error) {
	if principal == nil {
		return "", ErrNoAccess
	}

	// Step 1: fetch the candidate row.
	item, err := s.contentRepo.GetByID(ctx, contentItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoAccess
		}
		return "", fmt.Errorf("failed to fetch content item: %w", err)
	}

	// Step 2: verify the caller's membership in the row's tenant
	// independently. The store is not trusted to have filtered the read.
	if _, err := s.membershipRepo.GetActive(ctx, item.TenantID, principal.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoAccess
		}
		return "", fmt.Errorf("failed to verify membership: %w", err)
	}

	if item.StoragePath == nil || *item.StoragePath == "" {
		return "", ErrNoAccess
	}

	return s.storageSvc.PresignedURL(ctx, s.bucket, *item.StoragePath, SignedURLExpiry)
}

func (s *contentService) UploadFile(ctx context.Context, tenantID, moduleID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	ext := path.Ext(filename)
	name := strings.ToLower(random.String(16)) + ext
	objectName := fmt.Sprintf("tenant/%s/modules/%s/%s", tenantID.String(), moduleID.String(), name)

	if err := s.storageSvc.Upload(ctx, s.bucket, objectName, contentType, reader, size); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return objectName, nil
}
