package repositories

import (
	"context"
	"fmt"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListEmployeesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Profile, error)
}

type profileRepo struct {
	db DB
}

func NewProfileRepo(db DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	var count int
	emailCheckQuery := `SELECT COUNT(*) FROM profiles WHERE email = $1`
	err := r.db.QueryRow(ctx, emailCheckQuery, profile.Email).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("profile with email '%s' already exists", profile.Email)
	}

	query := `
		INSERT INTO profiles (id, email, full_name, password_hash, force_password_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, profile.ID, profile.Email, profile.FullName, profile.PasswordHash, profile.ForcePasswordReset)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, full_name, password_hash, force_password_reset, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&profile.ID, &profile.Email, &profile.FullName, &profile.PasswordHash, &profile.ForcePasswordReset, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, full_name, password_hash, force_password_reset, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&profile.ID, &profile.Email, &profile.FullName, &profile.PasswordHash, &profile.ForcePasswordReset, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdatePassword replaces the hash and clears the forced-reset flag in one
// statement, so a flagged user is unflagged only once the new hash is stored.
func (r *profileRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE profiles
		SET password_hash = $1, force_password_reset = false, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	return err
}

func (r *profileRepo) ListEmployeesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT p.id, p.email, p.full_name, p.password_hash, p.force_password_reset, p.created_at, p.updated_at
		FROM profiles p
		JOIN tenant_memberships m ON m.user_id = p.id
		WHERE m.tenant_id = $1 AND m.role = $2 AND m.active = true
		ORDER BY p.full_name
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Email, &profile.FullName, &profile.PasswordHash, &profile.ForcePasswordReset, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
