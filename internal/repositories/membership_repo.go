package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	// GetActive returns the caller's active membership in one tenant, or
	// pgx.ErrNoRows when there is none. With duplicate memberships the oldest
	// row wins.
	GetActive(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error)
	HasAnyMembership(ctx context.Context, userID uuid.UUID) (bool, error)
	// FirstActiveSlug returns the slug of some tenant the user can enter,
	// used for the post-login redirect.
	FirstActiveSlug(ctx context.Context, userID uuid.UUID) (string, error)
	Deactivate(ctx context.Context, tenantID, userID uuid.UUID) error
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepo(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO tenant_memberships (id, tenant_id, user_id, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, membership.ID, membership.TenantID, membership.UserID, membership.Role, membership.Active)
	return err
}

func (r *membershipRepo) GetActive(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error) {
	membership := &models.Membership{}
	query := `
		SELECT id, tenant_id, user_id, role, active, created_at
		FROM tenant_memberships
		WHERE tenant_id = $1 AND user_id = $2 AND active = true
		ORDER BY created_at
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, tenantID, userID).Scan(&membership.ID, &membership.TenantID, &membership.UserID, &membership.Role, &membership.Active, &membership.CreatedAt)
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *membershipRepo) HasAnyMembership(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM tenant_memberships WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipRepo) FirstActiveSlug(ctx context.Context, userID uuid.UUID) (string, error) {
	var slug string
	query := `
		SELECT t.slug
		FROM tenant_memberships m
		JOIN tenants t ON t.id = m.tenant_id
		WHERE m.user_id = $1 AND m.active = true AND t.active = true
		ORDER BY m.created_at
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&slug)
	if err != nil {
		return "", err
	}
	return slug, nil
}

func (r *membershipRepo) Deactivate(ctx context.Context, tenantID, userID uuid.UUID) error {
	query := `
		UPDATE tenant_memberships
		SET active = false
		WHERE tenant_id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, userID)
	return err
}
