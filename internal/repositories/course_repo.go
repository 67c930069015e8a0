package repositories

import (
	"context"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Course, error)
	// ListAssignedPublished returns the published courses an employee has been
	// granted through assignments, ordered by title.
	ListAssignedPublished(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type courseRepo struct {
	db DB
}

func NewCourseRepo(db DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, tenant_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, course.ID, course.TenantID, course.Title, course.Description, course.Status)
	return err
}

func (r *courseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Course, error) {
	course := &models.Course{}
	query := `
		SELECT id, tenant_id, title, description, status, created_at, updated_at
		FROM courses
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&course.ID, &course.TenantID, &course.Title, &course.Description, &course.Status, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET title = $1, description = $2, status = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, course.Title, course.Description, course.Status, course.TenantID, course.ID)
	return err
}

func (r *courseRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM courses WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *courseRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Course, error) {
	query := `
		SELECT id, tenant_id, title, description, status, created_at, updated_at
		FROM courses
		WHERE tenant_id = $1
		ORDER BY title
	`
	rows, err := r.db.Query(ctx, query, tenantID)
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

func (r *courseRepo) ListAssignedPublished(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error) {
	query := `
		SELECT c.id, c.tenant_id, c.title, c.description, c.status, c.created_at, c.updated_at
		FROM courses c
		JOIN employee_course_assignments a ON a.course_id = c.id AND a.tenant_id = c.tenant_id
		WHERE c.tenant_id = $1 AND a.employee_id = $2 AND c.status = $3
		ORDER BY c.title
	`
	rows, err := r.db.Query(ctx, query, tenantID, employeeID, models.CourseStatusPublished)
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

func (r *courseRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM courses WHERE tenant_id = $1`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
