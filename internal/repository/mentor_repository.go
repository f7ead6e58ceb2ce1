package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

const mentorColumns = `id, name, email, phone, subject, emirate, active, created_at, updated_at`

// MentorRepository persists mentors.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// List returns all mentors ordered by name.
func (r *MentorRepository) List(ctx context.Context) ([]models.Mentor, error) {
	mentors := []models.Mentor{}
	if err := r.db.SelectContext(ctx, &mentors, "SELECT "+mentorColumns+" FROM mentors ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	return mentors, nil
}

// FindByID fetches a mentor.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, "SELECT "+mentorColumns+" FROM mentors WHERE id = $1", id); err != nil {
		return nil, mapError("find mentor", err)
	}
	return &mentor, nil
}

// Create inserts a mentor.
func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	const query = `INSERT INTO mentors (` + mentorColumns + `) VALUES (:id, :name, :email, :phone, :subject, :emirate, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return mapError("create mentor", err)
	}
	return nil
}

// Update writes mutable mentor fields.
func (r *MentorRepository) Update(ctx context.Context, mentor *models.Mentor) error {
	mentor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mentors SET name = :name, email = :email, phone = :phone, subject = :subject, emirate = :emirate, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, mentor)
	if err != nil {
		return mapError("update mentor", err)
	}
	return expectAffected("update mentor", res)
}

// Delete removes a mentor.
func (r *MentorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mentors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mentor: %w", err)
	}
	return expectAffected("delete mentor", res)
}
