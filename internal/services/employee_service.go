package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"traindesk/internal/caching"
	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CreateEmployeeRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required"`
	TempPassword string `json:"temp_password" validate:"required,min=6"`
}

// EmployeeService provisions employee accounts inside a tenant. New accounts
// carry force_password_reset so the first login lands on the password page
// before any tenant data is reachable.
type EmployeeService interface {
	Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateEmployeeRequest) (*models.Profile, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Profile, error)
	// Deactivate revokes the employee's membership in the tenant. The profile
	// row survives; only the tenant access goes away.
	Deactivate(ctx context.Context, tenantID, employeeID uuid.UUID, actor *uuid.UUID) error
}

type employeeService struct {
	profileRepo    repositories.ProfileRepository
	membershipRepo repositories.MembershipRepository
	auditSvc       AuditService
	cacheSvc       caching.CacheService
}

func NewEmployeeService(profileRepo repositories.ProfileRepository, membershipRepo repositories.MembershipRepository, auditSvc AuditService, cacheSvc caching.CacheService) EmployeeService {
	return &employeeService{
		profileRepo:    profileRepo,
		membershipRepo: membershipRepo,
		auditSvc:       auditSvc,
		cacheSvc:       cacheSvc,
	}
}

func (s *employeeService) Create(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID, req *CreateEmployeeRequest) (*models.Profile, error) {
	if req.Email == "" || req.FullName == "" {
		return nil, errors.New("email and full name are required")
	}
	if len(req.TempPassword) < 6 {
		return nil, errors.New("temporary password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.TempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:                 uuid.New(),
		Email:              req.Email,
		FullName:           req.FullName,
		PasswordHash:       string(hash),
		ForcePasswordReset: true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		TenantID: tenantID,
		UserID:   profile.ID,
		Role:     models.RoleEmployee,
		Active:   true,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionEmployeeCreate, models.EntityEmployee, profile.ID.String(), actor, models.JSONB{
		"email":     profile.Email,
		"full_name": profile.FullName,
	})

	return profile, nil
}

func (s *employeeService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Profile, error) {
	return s.profileRepo.ListEmployeesByTenant(ctx, tenantID)
}

func (s *employeeService) Deactivate(ctx context.Context, tenantID, employeeID uuid.UUID, actor *uuid.UUID) error {
	if err := s.membershipRepo.Deactivate(ctx, tenantID, employeeID); err != nil {
		return fmt.Errorf("failed to deactivate membership: %w", err)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteAssignedCourses(ctx, tenantID, employeeID); err != nil {
			log.Printf("WARN: failed to drop catalog cache for employee %s: %v", employeeID, err)
		}
	}

	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionEmployeeDeactivate, models.EntityEmployee, employeeID.String(), actor, nil)
	return nil
}
