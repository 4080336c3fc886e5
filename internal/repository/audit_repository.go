package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

// AuditRepository persists mutation audit trail entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository instantiates an audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts an audit entry.
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO audit_logs (id, actor_id, action, resource, resource_id, payload, ip_address, user_agent, created_at)
		VALUES (:id, :actor_id, :action, :resource, :resource_id, :payload, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListByResource returns the most recent audit entries for one resource.
func (r *AuditRepository) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT id, actor_id, action, resource, resource_id, payload, ip_address, user_agent, created_at
		FROM audit_logs WHERE resource = $1 AND resource_id = $2 ORDER BY created_at DESC LIMIT $3`
	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, resource, resourceID, limit); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
