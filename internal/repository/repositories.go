package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

// CandidateStore persists candidates with their embedded enrollments,
// results and notes.
type CandidateStore interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	CreateMany(ctx context.Context, candidates []*models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdateMany(ctx context.Context, candidates []*models.Candidate) error
	Delete(ctx context.Context, id string) error
}

// CourseStore persists the course catalog.
type CourseStore interface {
	List(ctx context.Context, includeInactive bool) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, code string) error
}

// MentorStore persists mentors.
type MentorStore interface {
	List(ctx context.Context) ([]models.Mentor, error)
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	Create(ctx context.Context, mentor *models.Mentor) error
	Update(ctx context.Context, mentor *models.Mentor) error
	Delete(ctx context.Context, id string) error
}

// UserStore persists staff accounts and applicants.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// AuditStore persists the audit trail.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// Repositories is one storage backend wired for the services.
type Repositories struct {
	Candidates CandidateStore
	Courses    CourseStore
	Mentors    MentorStore
	Users      UserStore
	Audit      AuditStore
	// Ping is nil for backends without a remote dependency.
	Ping func(ctx context.Context) error
}

// NewPostgresRepositories wires every repository onto db.
func NewPostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Candidates: NewCandidateRepository(db),
		Courses:    NewCourseRepository(db),
		Mentors:    NewMentorRepository(db),
		Users:      NewUserRepository(db),
		Audit:      NewAuditRepository(db),
		Ping:       db.PingContext,
	}
}
