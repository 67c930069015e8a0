package services

import (
	"context"
	"fmt"
	"log"

	"traindesk/internal/caching"
	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
)

// ReconcileResult is the delta a reconciliation applied. An id never appears
// in both lists.
type ReconcileResult struct {
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

// Empty reports whether the reconciliation was a no-op.
func (r *ReconcileResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// AssignmentService reconciles an employee's assigned courses against a
// desired set. The delta is computed from a single snapshot read at the start
// of the call; concurrent reconciliations for the same employee are not
// locked against each other and the last write wins.
type AssignmentService interface {
	Current(ctx context.Context, tenantID, employeeID uuid.UUID) ([]uuid.UUID, error)
	Reconcile(ctx context.Context, tenantID, employeeID uuid.UUID, actor *uuid.UUID, desired []uuid.UUID) (*ReconcileResult, error)
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	auditSvc       AuditService
	cacheSvc       caching.CacheService
}

func NewAssignmentService(assignmentRepo repositories.AssignmentRepository, auditSvc AuditService, cacheSvc caching.CacheService) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		auditSvc:       auditSvc,
		cacheSvc:       cacheSvc,
	}
}

func (s *assignmentService) Current(ctx context.Context, tenantID, employeeID uuid.UUID) ([]uuid.UUID, error) {
	return s.assignmentRepo.ListCourseIDs(ctx, tenantID, employeeID)
}

func (s *assignmentService) Reconcile(ctx context.Context, tenantID, employeeID uuid.UUID, actor *uuid.UUID, desired []uuid.UUID) (*ReconcileResult, error) {
	current, err := s.assignmentRepo.ListCourseIDs(ctx, tenantID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read current assignments: %w", err)
	}

	currentSet := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[uuid.UUID]bool, len(desired))

	result := &ReconcileResult{Added: []uuid.UUID{}, Removed: []uuid.UUID{}}

	for _, id := range desired {
		if desiredSet[id] {
			continue // duplicate in input
		}
		desiredSet[id] = true
		if !currentSet[id] {
			result.Added = append(result.Added, id)
		}
	}
	for _, id := range current {
		if !desiredSet[id] {
			result.Removed = append(result.Removed, id)
		}
	}

	if result.Empty() {
		return result, nil
	}

	// Removals before additions; a failed phase aborts without applying the
	// other so the caller sees exactly which phase failed.
	if len(result.Removed) > 0 {
		if err := s.assignmentRepo.BulkDelete(ctx, tenantID, employeeID, result.Removed); err != nil {
			return nil, fmt.Errorf("remove phase failed: %w", err)
		}
	}
	if len(result.Added) > 0 {
		if err := s.assignmentRepo.BulkInsert(ctx, tenantID, employeeID, result.Added); err != nil {
			return nil, fmt.Errorf("add phase failed: %w", err)
		}
	}

	// One audit entry summarizing the whole delta, not one per row.
	s.auditSvc.RecordOrLog(ctx, tenantID, models.ActionAssignmentUpdate, models.EntityAssignment, employeeID.String(), actor, models.JSONB{
		"added":   uuidStrings(result.Added),
		"removed": uuidStrings(result.Removed),
	})

	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteAssignedCourses(ctx, tenantID, employeeID); err != nil {
			log.Printf("WARN: failed to invalidate catalog cache for employee %s: %v", employeeID, err)
		}
	}

	return result, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
