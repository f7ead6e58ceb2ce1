package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

// AuditRepository stores audit trail entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, actor, action, resource, resource_id, details, ip_address, user_agent, created_at)
        VALUES (:id, :user_id, :actor, :action, :resource, :resource_id, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `SELECT id, user_id, actor, action, resource, resource_id, details, ip_address, user_agent, created_at
        FROM audit_logs ORDER BY created_at DESC LIMIT $1`
	logs := []models.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
