package services

import (
	"context"
	"errors"
	"fmt"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateCohortRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CohortService manages named employee groups inside a tenant. Cohorts are an
// organizational tool for admins; membership in a cohort grants nothing on its
// own.
type CohortService interface {
	Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateCohortRequest) (*models.Cohort, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Cohort, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error

	AddMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error
	RemoveMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error
	MemberIDs(ctx context.Context, tenantID, cohortID uuid.UUID) ([]uuid.UUID, error)
}

type cohortService struct {
	cohortRepo repositories.CohortRepository
	auditSvc   AuditService
}

func NewCohortService(cohortRepo repositories.CohortRepository, auditSvc AuditService) CohortService {
	return &cohortService{
		cohortRepo: cohortRepo,
		auditSvc:   auditSvc,
	}
}

func (s *cohortService) Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateCohortRequest) (*models.Cohort, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	cohort := &models.Cohort{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.cohortRepo.Create(ctx, cohort); err != nil {
		return nil, err
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionCohortCreate, models.EntityCohort, cohort.ID.String(), actor, models.JSONB{
		"name": cohort.Name,
	})
	return cohort, nil
}

func (s *cohortService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Cohort, error) {
	return s.cohortRepo.ListByTenant(ctx, tenantID)
}

func (s *cohortService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor *uuid.UUID) error {
	if err := s.cohortRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionCohortDelete, models.EntityCohort, id.String(), actor, nil)
	return nil
}

func (s *cohortService) AddMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error {
	// The cohort must exist inside this tenant; a foreign cohort id is
	// indistinguishable from a missing one.
	if _, err := s.cohortRepo.GetByID(ctx, tenantID, cohortID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to verify cohort: %w", err)
	}
	return s.cohortRepo.AddMember(ctx, tenantID, cohortID, employeeID)
}

func (s *cohortService) RemoveMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error {
	return s.cohortRepo.RemoveMember(ctx, tenantID, cohortID, employeeID)
}

func (s *cohortService) MemberIDs(ctx context.Context, tenantID, cohortID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.cohortRepo.GetByID(ctx, tenantID, cohortID); err != nil {
		return nil, err
	}
	return s.cohortRepo.ListMemberIDs(ctx, tenantID, cohortID)
}
