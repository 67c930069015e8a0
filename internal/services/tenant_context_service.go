package services

import (
	"context"
	"errors"
	"fmt"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// TenantContextService resolves a URL slug plus the authenticated principal
// into the tenant record and the principal's role within it.
//
// The check is explicit and two-step: fetch the candidate tenant, then verify
// the caller's membership independently. A missing tenant, an inactive
// tenant, and a missing membership all yield the same nil result, so a
// caller probing slugs learns nothing about which tenants exist.
type TenantContextService interface {
	Resolve(ctx context.Context, slug string, principal *models.Profile) (*models.TenantContext, error)
}

type tenantContextService struct {
	tenantRepo     repositories.TenantRepository
	membershipRepo repositories.MembershipRepository
}

func NewTenantContextService(tenantRepo repositories.TenantRepository, membershipRepo repositories.MembershipRepository) TenantContextService {
	return &tenantContextService{
		tenantRepo:     tenantRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *tenantContextService) Resolve(ctx context.Context, slug string, principal *models.Profile) (*models.TenantContext, error) {
	if slug == "" {
		return nil, nil
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up tenant %q: %w", slug, err)
	}
	if !tenant.Active {
		return nil, nil
	}

	if principal == nil {
		return nil, nil
	}

	membership, err := s.membershipRepo.GetActive(ctx, tenant.ID, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}

	return &models.TenantContext{
		TenantID: tenant.ID,
		Name:     tenant.Name,
		Slug:     tenant.Slug,
		Role:     membership.Role,
	}, nil
}
