package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

const courseColumns = `code, title, brief, weight, pass_threshold, is_required, tracks, active, created_at, updated_at`

// CourseRepository persists the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses ordered by code. Inactive courses are included only on request.
func (r *CourseRepository) List(ctx context.Context, includeInactive bool) ([]models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses"
	if !includeInactive {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY code ASC"

	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByCode fetches a course by code, ignoring case.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	query := "SELECT " + courseColumns + " FROM courses WHERE LOWER(code) = LOWER($1)"
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, mapError("find course", err)
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (` + courseColumns + `)
        VALUES (:code, :title, :brief, :weight, :pass_threshold, :is_required, :tracks, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return mapError("create course", err)
	}
	return nil
}

// Update writes mutable course fields; the code is the key and never changes.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, brief = :brief, weight = :weight, pass_threshold = :pass_threshold,
        is_required = :is_required, tracks = :tracks, active = :active, updated_at = :updated_at WHERE code = :code`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return mapError("update course", err)
	}
	return expectAffected("update course", res)
}

// Deactivate soft deletes a course.
func (r *CourseRepository) Deactivate(ctx context.Context, code string) error {
	const query = `UPDATE courses SET active = FALSE, updated_at = $2 WHERE LOWER(code) = LOWER($1)`
	res, err := r.db.ExecContext(ctx, query, code, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}
	return expectAffected("deactivate course", res)
}
