package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Actor identifies who performed an operation.
type Actor struct {
	UserID    string
	Email     string
	Name      string
	Role      models.UserRole
	IP        string
	UserAgent string
}

// Label is the human readable actor recorded on enrollments and notes.
func (a Actor) Label() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	default:
		return "system"
	}
}

// auditRecorder writes audit entries. Failures are logged, never returned.
type auditRecorder struct {
	repo   auditWriter
	logger *zap.Logger
}

func (r auditRecorder) record(ctx context.Context, actor Actor, action, resource, resourceID string, details models.AuditDetails) {
	if r.repo == nil {
		return
	}
	entry := &models.AuditLog{
		Actor:     actor.Label(),
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if actor.UserID != "" {
		id := actor.UserID
		entry.UserID = &id
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
