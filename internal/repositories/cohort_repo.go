package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type CohortRepository interface {
	Create(ctx context.Context, cohort *models.Cohort) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Cohort, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Cohort, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	AddMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error
	RemoveMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error
	ListMemberIDs(ctx context.Context, tenantID, cohortID uuid.UUID) ([]uuid.UUID, error)
}

type cohortRepo struct {
	db DB
}

func NewCohortRepo(db DB) CohortRepository {
	return &cohortRepo{db: db}
}

func (r *cohortRepo) Create(ctx context.Context, cohort *models.Cohort) error {
	query := `
		INSERT INTO cohorts (id, tenant_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, cohort.ID, cohort.TenantID, cohort.Name, cohort.Description)
	return err
}

func (r *cohortRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Cohort, error) {
	cohort := &models.Cohort{}
	query := `
		SELECT id, tenant_id, name, description, created_at
		FROM cohorts
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&cohort.ID, &cohort.TenantID, &cohort.Name, &cohort.Description, &cohort.CreatedAt)
	if err != nil {
		return nil, err
	}
	return cohort, nil
}

func (r *cohortRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Cohort, error) {
	query := `
		SELECT id, tenant_id, name, description, created_at
		FROM cohorts
		WHERE tenant_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cohorts []*models.Cohort
	for rows.Next() {
		cohort := &models.Cohort{}
		if err := rows.Scan(&cohort.ID, &cohort.TenantID, &cohort.Name, &cohort.Description, &cohort.CreatedAt); err != nil {
			return nil, err
		}
		cohorts = append(cohorts, cohort)
	}
	return cohorts, rows.Err()
}

func (r *cohortRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM cohorts WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *cohortRepo) AddMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error {
	query := `
		INSERT INTO cohort_members (id, tenant_id, cohort_id, employee_id, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, tenantID, cohortID, employeeID)
	return err
}

func (r *cohortRepo) RemoveMember(ctx context.Context, tenantID, cohortID, employeeID uuid.UUID) error {
	query := `
		DELETE FROM cohort_members
		WHERE tenant_id = $1 AND cohort_id = $2 AND employee_id = $3
	`
	_, err := r.db.Exec(ctx, query, tenantID, cohortID, employeeID)
	return err
}

func (r *cohortRepo) ListMemberIDs(ctx context.Context, tenantID, cohortID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT employee_id
		FROM cohort_members
		WHERE tenant_id = $1 AND cohort_id = $2
	`
	rows, err := r.db.Query(ctx, query, tenantID, cohortID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
