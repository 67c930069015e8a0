package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"traindesk/internal/caching"
	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const catalogCacheTTL = 5 * time.Minute

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type UpdateCourseRequest struct {
	ID          uuid.UUID
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required"`
}

type CreateModuleRequest struct {
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
}

// CourseWithModules is the employee-facing course detail view.
type CourseWithModules struct {
	Course  *models.Course   `json:"course"`
	Modules []*models.Module `json:"modules"`
}

// CourseService owns the tenant-scoped content tree of courses and modules.
// Every operation takes the already-resolved tenant id; nothing here trusts
// ids embedded in payloads to pick the tenant.
type CourseService interface {
	Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Course, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Course, error)

	CreateModule(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error
	ListModules(ctx context.Context, tenantID, courseID uuid.UUID) ([]*models.Module, error)

	// AssignedCourses is the employee read side: published courses the
	// employee holds an assignment for, served through the catalog cache.
	AssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error)
	// CourseDetail returns the course and its modules only when the employee
	// holds an assignment and the course is published. Everything else is
	// pgx.ErrNoRows, indistinguishable from a course that does not exist.
	CourseDetail(ctx context.Context, tenantID, employeeID, courseID uuid.UUID) (*CourseWithModules, error)
}

type courseService struct {
	courseRepo     repositories.CourseRepository
	moduleRepo     repositories.ModuleRepository
	assignmentRepo repositories.AssignmentRepository
	auditSvc       AuditService
	cacheSvc       caching.CacheService
}

func NewCourseService(courseRepo repositories.CourseRepository, moduleRepo repositories.ModuleRepository, assignmentRepo repositories.AssignmentRepository, auditSvc AuditService, cacheSvc caching.CacheService) CourseService {
	return &courseService{
		courseRepo:     courseRepo,
		moduleRepo:     moduleRepo,
		assignmentRepo: assignmentRepo,
		auditSvc:       auditSvc,
		cacheSvc:       cacheSvc,
	}
}

func (s *courseService) Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateCourseRequest) (*models.Course, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	course := &models.Course{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.CourseStatusDraft,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionCourseCreate, models.EntityCourse, course.ID.String(), actor, models.JSONB{
		"title": course.Title,
	})
	return course, nil
}

func (s *courseService) Update(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *UpdateCourseRequest) (*models.Course, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Status != models.CourseStatusDraft && req.Status != models.CourseStatusPublished {
		return nil, errors.New("status must be draft or published")
	}

	existing, err := s.courseRepo.GetByID(ctx, tenantID, req.ID)
	if err != nil {
		return nil, err
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Status = req.Status

	if err := s.courseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionCourseUpdate, models.EntityCourse, existing.ID.String(), actor, models.JSONB{
		"title":  existing.Title,
		"status": existing.Status,
	})
	s.invalidateCatalog(ctx, tenantID)
	return existing, nil
}

func (s *courseService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error {
	if err := s.courseRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionCourseDelete, models.EntityCourse, id.String(), actor, nil)
	s.invalidateCatalog(ctx, tenantID)
	return nil
}

func (s *courseService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Course, error) {
	return s.courseRepo.ListByTenant(ctx, tenantID)
}

func (s *courseService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, tenantID, id)
}

func (s *courseService) CreateModule(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateModuleRequest) (*models.Module, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	// The parent course must exist inside this tenant; a course id from
	// another tenant is indistinguishable from a missing one.
	if _, err := s.courseRepo.GetByID(ctx, tenantID, req.CourseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("course not found")
		}
		return nil, fmt.Errorf("failed to verify course: %w", err)
	}

	module := &models.Module{
		ID:          uuid.New(),
		TenantID:    tenantID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionModuleCreate, models.EntityModule, module.ID.String(), actor, models.JSONB{
		"title":     module.Title,
		"course_id": module.CourseID.String(),
	})
	return module, nil
}

func (s *courseService) DeleteModule(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error {
	if err := s.moduleRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionModuleDelete, models.EntityModule, id.String(), actor, nil)
	return nil
}

func (s *courseService) ListModules(ctx context.Context, tenantID, courseID uuid.UUID) ([]*models.Module, error) {
	return s.moduleRepo.ListByCourse(ctx, tenantID, courseID)
}

func (s *courseService) AssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetAssignedCourses(ctx, tenantID, employeeID)
		if err != nil {
			log.Printf("WARN: catalog cache read failed for employee %s: %v", employeeID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	courses, err := s.courseRepo.ListAssignedPublished(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetAssignedCourses(ctx, tenantID, employeeID, courses, catalogCacheTTL); err != nil {
			log.Printf("WARN: catalog cache write failed for employee %s: %v", employeeID, err)
		}
	}
	return courses, nil
}

func (s *courseService) CourseDetail(ctx context.Context, tenantID, employeeID, courseID uuid.UUID) (*CourseWithModules, error) {
	course, err := s.courseRepo.GetByID(ctx, tenantID, courseID)
	if err != nil {
		return nil, err
	}

	// The assignment check is explicit: the row being readable does not mean
	// the caller may see it. Unpublished or unassigned courses look exactly
	// like missing ones.
	if course.Status != models.CourseStatusPublished {
		return nil, pgx.ErrNoRows
	}
	assigned, err := s.assignmentRepo.Exists(ctx, tenantID, employeeID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignment: %w", err)
	}
	if !assigned {
		return nil, pgx.ErrNoRows
	}

	modules, err := s.moduleRepo.ListByCourse(ctx, tenantID, courseID)
	if err != nil {
		return nil, err
	}
	return &CourseWithModules{Course: course, Modules: modules}, nil
}

func (s *courseService) invalidateCatalog(ctx context.Context, tenantID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateTenantCatalog(ctx, tenantID); err != nil {
		log.Printf("WARN: failed to invalidate catalog cache for tenant %s: %v", tenantID, err)
	}
}
