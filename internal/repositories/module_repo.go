package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type ModuleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Module, error)
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByCourse(ctx context.Context, tenantID, courseID uuid.UUID) ([]*models.Module, error)
}

type moduleRepo struct {
	db DB
}

func NewModuleRepo(db DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) Create(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (id, tenant_id, course_id, title, description, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, module.ID, module.TenantID, module.CourseID, module.Title, module.Description, module.SortOrder)
	return err
}

func (r *moduleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Module, error) {
	module := &models.Module{}
	query := `
		SELECT id, tenant_id, course_id, title, description, sort_order, created_at, updated_at
		FROM modules
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&module.ID, &module.TenantID, &module.CourseID, &module.Title, &module.Description, &module.SortOrder, &module.CreatedAt, &module.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (r *moduleRepo) Update(ctx context.Context, module *models.Module) error {
	query := `
		UPDATE modules
		SET title = $1, description = $2, sort_order = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, module.Title, module.Description, module.SortOrder, module.TenantID, module.ID)
	return err
}

func (r *moduleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM modules WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *moduleRepo) ListByCourse(ctx context.Context, tenantID, courseID uuid.UUID) ([]*models.Module, error) {
	query := `
		SELECT id, tenant_id, course_id, title, description, sort_order, created_at, updated_at
		FROM modules
		WHERE tenant_id = $1 AND course_id = $2
		ORDER BY sort_order
	`
	rows, err := r.db.Query(ctx, query, tenantID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []*models.Module
	for rows.Next() {
		module := &models.Module{}
		if err := rows.Scan(&module.ID, &module.TenantID, &module.CourseID, &module.Title, &module.Description, &module.SortOrder, &module.CreatedAt, &module.UpdatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}
