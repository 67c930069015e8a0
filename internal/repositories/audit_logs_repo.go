package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"traindesk/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Create appends a new audit log entry. There is no update or delete;
	// entries are immutable once written.
	Create(ctx context.Context, auditLog *models.AuditLog) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error)
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now()
	}

	var metadataBytes []byte
	var err error
	if auditLog.Metadata != nil {
		metadataBytes, err = json.Marshal(auditLog.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, action, entity_type, entity_id, actor, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.TenantID,
		auditLog.Action,
		auditLog.EntityType,
		auditLog.EntityID,
		auditLog.Actor,
		metadataBytes,
		auditLog.CreatedAt,
	)
	return err
}

func (r *auditLogsRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var metadataBytes []byte

	query := `
		SELECT id, tenant_id, action, entity_type, entity_id, actor, metadata, created_at
		FROM audit_logs
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(
		&auditLog.ID,
		&auditLog.TenantID,
		&auditLog.Action,
		&auditLog.EntityType,
		&auditLog.EntityID,
		&auditLog.Actor,
		&metadataBytes,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &auditLog.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return auditLog, nil
}

func (r *auditLogsRepo) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, tenant_id, action, entity_type, entity_id, actor, metadata, created_at
		FROM audit_logs
		WHERE tenant_id = $1
	`)
	args := []any{tenantID}

	if filters != nil {
		if filters.Action != nil {
			args = append(args, *filters.Action)
			sb.WriteString(" AND action = $" + strconv.Itoa(len(args)))
		}
		if filters.EntityType != nil {
			args = append(args, *filters.EntityType)
			sb.WriteString(" AND entity_type = $" + strconv.Itoa(len(args)))
		}
		if filters.EntityID != nil {
			args = append(args, *filters.EntityID)
			sb.WriteString(" AND entity_id = $" + strconv.Itoa(len(args)))
		}
		if filters.Actor != nil {
			args = append(args, *filters.Actor)
			sb.WriteString(" AND actor = $" + strconv.Itoa(len(args)))
		}
		if filters.StartDate != nil {
			args = append(args, *filters.StartDate)
			sb.WriteString(" AND created_at >= $" + strconv.Itoa(len(args)))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			sb.WriteString(" AND created_at <= $" + strconv.Itoa(len(args)))
		}
	}

	sb.WriteString(" ORDER BY created_at DESC")

	limit := 50
	offset := 0
	if filters != nil {
		if filters.Limit > 0 {
			limit = filters.Limit
		}
		if filters.Offset > 0 {
			offset = filters.Offset
		}
	}
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, offset)
	sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		auditLog := &models.AuditLog{}
		var metadataBytes []byte
		if err := rows.Scan(
			&auditLog.ID,
			&auditLog.TenantID,
			&auditLog.Action,
			&auditLog.EntityType,
			&auditLog.EntityID,
			&auditLog.Actor,
			&metadataBytes,
			&auditLog.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &auditLog.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		logs = append(logs, auditLog)
	}
	return logs, rows.Err()
}
