package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type CreateTenantRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	CompanySlug string `json:"company_slug" validate:"required"`
}

type UpdateTenantRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active"`
}

// SetupService founds a tenant for a freshly signed-up user. The two inserts
// (tenant, then owner membership) are not wrapped in one transaction; if the
// membership insert fails the tenant insert is compensated with a best-effort
// delete. The pre-insert membership check also leaves a window where two
// concurrent setups for the same user both pass; nothing at the data layer
// closes it. Both are inherited behavior, kept deliberately.
type SetupService interface {
	CreateFirstTenant(ctx context.Context, principal *models.Profile, req *CreateTenantRequest) (*models.Tenant, error)
	// UpdateTenant renames a tenant and, for owners only, toggles its active
	// flag. The slug is immutable; it is the tenant's public identity.
	UpdateTenant(ctx context.Context, tc *models.TenantContext, actor *uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error)
}

type setupService struct {
	tenantRepo     repositories.TenantRepository
	membershipRepo repositories.MembershipRepository
	auditSvc       AuditService
}

func NewSetupService(tenantRepo repositories.TenantRepository, membershipRepo repositories.MembershipRepository, auditSvc AuditService) SetupService {
	return &setupService{
		tenantRepo:     tenantRepo,
		membershipRepo: membershipRepo,
		auditSvc:       auditSvc,
	}
}

func (s *setupService) CreateFirstTenant(ctx context.Context, principal *models.Profile, req *CreateTenantRequest) (*models.Tenant, error) {
	if principal == nil {
		return nil, errors.New("you must be logged in to create a company")
	}
	if req.CompanyName == "" || req.CompanySlug == "" {
		return nil, errors.New("company name and slug are required")
	}
	if !slugPattern.MatchString(req.CompanySlug) {
		return nil, errors.New("slug must contain only lowercase letters, numbers, and hyphens")
	}

	hasMembership, err := s.membershipRepo.HasAnyMembership(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if hasMembership {
		return nil, errors.New("you already belong to a company")
	}

	taken, err := s.tenantRepo.SlugExists(ctx, req.CompanySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if taken {
		return nil, errors.New("this company slug is already taken")
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   req.CompanyName,
		Slug:   req.CompanySlug,
		Active: true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		UserID:   principal.ID,
		Role:     models.RoleOwner,
		Active:   true,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		// Compensate the tenant insert. Best effort: a failure here leaves
		// an orphaned tenant row, which is logged for operator cleanup.
		if delErr := s.tenantRepo.Delete(ctx, tenant.ID); delErr != nil {
			log.Printf("ERROR: failed to roll back tenant %s after membership failure: %v", tenant.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	actor := principal.ID
	s.auditSvc.RecordOrLog(ctx, tenant.ID, models.ActionTenantCreate, models.EntityTenant, tenant.ID.String(), &actor, models.JSONB{
		"name": tenant.Name,
		"slug": tenant.Slug,
	})

	return tenant, nil
}

func (s *setupService) UpdateTenant(ctx context.Context, tc *models.TenantContext, actor *uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Active != nil && tc.Role != models.RoleOwner {
		return nil, errors.New("only the owner can change the company's active status")
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}

	tenant.Name = req.Name
	if req.Active != nil {
		tenant.Active = *req.Active
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.auditSvc.RecordOrLog(ctx, tenant.ID, models.ActionTenantUpdate, models.EntityTenant, tenant.ID.String(), actor, models.JSONB{
		"name":   tenant.Name,
		"active": tenant.Active,
	})
	return tenant, nil
}
