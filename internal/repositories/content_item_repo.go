package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type ContentItemRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	// GetByID is deliberately unscoped: the signed-URL endpoint receives a
	// bare item id and must verify the caller's membership against the row's
	// tenant_id as a second, explicit step.
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error)
	Update(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByModule(ctx context.Context, tenantID, moduleID uuid.UUID) ([]*models.ContentItem, error)
}

type contentItemRepo struct {
	db DB
}

func NewContentItemRepo(db DB) ContentItemRepository {
	return &contentItemRepo{db: db}
}

const contentItemColumns = `id, tenant_id, module_id, title, url, type, content_source, storage_path, created_at`

func (r *contentItemRepo) Create(ctx context.Context, item *models.ContentItem) error {
	query := `
		INSERT INTO content_items (id, tenant_id, module_id, title, url, type, content_source, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.TenantID, item.ModuleID, item.Title, item.URL, item.Type, item.ContentSource, item.StoragePath)
	return err
}

func (r *contentItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.TenantID, &item.ModuleID, &item.Title, &item.URL, &item.Type, &item.ContentSource, &item.StoragePath, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *contentItemRepo) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE tenant_id = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&item.ID, &item.TenantID, &item.ModuleID, &item.Title, &item.URL, &item.Type, &item.ContentSource, &item.StoragePath, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *contentItemRepo) Update(ctx context.Context, item *models.ContentItem) error {
	query := `
		UPDATE content_items
		SET title = $1, url = $2, type = $3, content_source = $4, storage_path = $5
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, item.Title, item.URL, item.Type, item.ContentSource, item.StoragePath, item.TenantID, item.ID)
	return err
}

func (r *contentItemRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM content_items WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *contentItemRepo) ListByModule(ctx context.Context, tenantID, moduleID uuid.UUID) ([]*models.ContentItem, error) {
	query := `
		SELECT ` + contentItemColumns + `
		FROM content_items
		WHERE tenant_id = $1 AND module_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item := &models.ContentItem{}
		if err := rows.Scan(&item.ID, &item.TenantID, &item.ModuleID, &item.Title, &item.URL, &item.Type, &item.ContentSource, &item.StoragePath, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
