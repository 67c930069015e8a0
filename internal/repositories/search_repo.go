package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

const searchResultLimit = 20

// SearchRepository runs tenant-scoped text search over the content tree.
// Plain ILIKE with a capped result set per entity; no ranking.
type SearchRepository interface {
	Search(ctx context.Context, tenantID uuid.UUID, term string) (*models.SearchResults, error)
}

type searchRepo struct {
	db DB
}

func NewSearchRepo(db DB) SearchRepository {
	return &searchRepo{db: db}
}

func (r *searchRepo) Search(ctx context.Context, tenantID uuid.UUID, term string) (*models.SearchResults, error) {
	pattern := "%" + term + "%"
	results := &models.SearchResults{}

	var err error
	if results.Courses, err = r.searchCourses(ctx, tenantID, pattern); err != nil {
		return nil, err
	}
	if results.Modules, err = r.searchModules(ctx, tenantID, pattern); err != nil {
		return nil, err
	}
	if results.ContentItems, err = r.searchContentItems(ctx, tenantID, pattern); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *searchRepo) searchCourses(ctx context.Context, tenantID uuid.UUID, pattern string) ([]*models.Course, error) {
	query := `
		SELECT id, tenant_id, title, description, status, created_at, updated_at
		FROM courses
		WHERE tenant_id = $1 AND (title ILIKE $2 OR description ILIKE $2)
		ORDER BY title
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, pattern, searchResultLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(&course.ID, &course.TenantID, &course.Title, &course.Description, &course.Status, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (r *searchRepo) searchModules(ctx context.Context, tenantID uuid.UUID, pattern string) ([]*models.Module, error) {
	query := `
		SELECT id, tenant_id, course_id, title, description, sort_order, created_at, updated_at
		FROM modules
		WHERE tenant_id = $1 AND (title ILIKE $2 OR description ILIKE $2)
		ORDER BY title
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, pattern, searchResultLimit)
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

func (r *searchRepo) searchContentItems(ctx context.Context, tenantID uuid.UUID, pattern string) ([]*models.ContentItem, error) {
	query := `
		SELECT id, tenant_id, module_id, title, url, type, content_source, storage_path, created_at
		FROM content_items
		WHERE tenant_id = $1 AND title ILIKE $2
		ORDER BY title
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, pattern, searchResultLimit)
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
