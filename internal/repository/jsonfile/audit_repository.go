package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

const maxAuditEntries = 5000

// AuditRepository appends audit entries to audit_logs.json, keeping the
// newest maxAuditEntries.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(_ context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	err := mutate(r.store, auditFile, func(all []models.AuditLog) ([]models.AuditLog, error) {
		all = append(all, *log)
		if len(all) > maxAuditEntries {
			all = all[len(all)-maxAuditEntries:]
		}
		return all, nil
	})
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *AuditRepository) List(_ context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	all, err := read[models.AuditLog](r.store, auditFile)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	out := make([]models.AuditLog, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
