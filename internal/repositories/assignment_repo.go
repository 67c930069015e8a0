package repositories

import (
	"context"

	"github.com/google/uuid"
)

type AssignmentRepository interface {
	// ListCourseIDs returns the employee's current assignment set in one read.
	ListCourseIDs(ctx context.Context, tenantID, employeeID uuid.UUID) ([]uuid.UUID, error)
	// Exists reports whether the employee holds an assignment to the course.
	Exists(ctx context.Context, tenantID, employeeID, courseID uuid.UUID) (bool, error)
	// BulkInsert adds all courseIDs for the employee as a single statement.
	BulkInsert(ctx context.Context, tenantID, employeeID uuid.UUID, courseIDs []uuid.UUID) error
	// BulkDelete removes all courseIDs for the employee as a single statement.
	BulkDelete(ctx context.Context, tenantID, employeeID uuid.UUID, courseIDs []uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type assignmentRepo struct {
	db DB
}

func NewAssignmentRepo(db DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) ListCourseIDs(ctx context.Context, tenantID, employeeID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT course_id
		FROM employee_course_assignments
		WHERE tenant_id = $1 AND employee_id = $2
	`
	rows, err := r.db.Query(ctx, query, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courseIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		courseIDs = append(courseIDs, id)
	}
	return courseIDs, rows.Err()
}

func (r *assignmentRepo) Exists(ctx context.Context, tenantID, employeeID, courseID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM employee_course_assignments
			WHERE tenant_id = $1 AND employee_id = $2 AND course_id = $3
		)
	`
	if err := r.db.QueryRow(ctx, query, tenantID, employeeID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *assignmentRepo) BulkInsert(ctx context.Context, tenantID, employeeID uuid.UUID, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO employee_course_assignments (id, tenant_id, employee_id, course_id, created_at)
		SELECT gen_random_uuid(), $1, $2, cid, NOW()
		FROM unnest($3::uuid[]) AS cid
	`
	_, err := r.db.Exec(ctx, query, tenantID, employeeID, courseIDs)
	return err
}

func (r *assignmentRepo) BulkDelete(ctx context.Context, tenantID, employeeID uuid.UUID, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	query := `
		DELETE FROM employee_course_assignments
		WHERE tenant_id = $1 AND employee_id = $2 AND course_id = ANY($3::uuid[])
	`
	_, err := r.db.Exec(ctx, query, tenantID, employeeID, courseIDs)
	return err
}

func (r *assignmentRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM employee_course_assignments WHERE tenant_id = $1`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
