package services

import (
	"context"
	"errors"
	"log"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
)

// AuditService appends immutable records of privileged mutations. Writes run
// synchronously before the HTTP response completes; they are never detached
// into the background.
type AuditService interface {
	Record(ctx context.Context, tenantID uuid.UUID, action, entityType, entityID string, actor *uuid.UUID, metadata models.JSONB) error
	// RecordOrLog is Record with the failure contract most callers want:
	// an audit failure must not fail the business mutation it accompanies,
	// but it must show up in server logs.
	RecordOrLog(ctx context.Context, tenantID uuid.UUID, action, entityType, entityID string, actor *uuid.UUID, metadata models.JSONB)
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditService(auditLogsRepo repositories.AuditLogsRepository) AuditService {
	return &auditService{auditLogsRepo: auditLogsRepo}
}

func (s *auditService) Record(ctx context.Context, tenantID uuid.UUID, action, entityType, entityID string, actor *uuid.UUID, metadata models.JSONB) error {
	if action == "" {
		return errors.New("action is required")
	}
	if entityType == "" {
		return errors.New("entity_type is required")
	}

	entry := &models.AuditLog{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Metadata:   metadata,
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditService) RecordOrLog(ctx context.Context, tenantID uuid.UUID, action, entityType, entityID string, actor *uuid.UUID, metadata models.JSONB) {
	if err := s.Record(ctx, tenantID, action, entityType, entityID, actor, metadata); err != nil {
		log.Printf("WARN: audit write failed for %s %s/%s in tenant %s: %v", action, entityType, entityID, tenantID, err)
	}
}

func (s *auditService) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	return s.auditLogsRepo.List(ctx, tenantID, filters)
}
