package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

const candidateColumns = `id, email, name, subject, track_id, gpa, emirate, mobile, national_id, status, mentor_id, enrollments, course_results, notes, hiring, created_at, updated_at`

const insertCandidate = `INSERT INTO candidates (` + candidateColumns + `)
        VALUES (:id, :email, :name, :subject, :track_id, :gpa, :emirate, :mobile, :national_id, :status, :mentor_id, :enrollments, :course_results, :notes, :hiring, :created_at, :updated_at)`

const updateCandidate = `UPDATE candidates SET email = :email, name = :name, subject = :subject, track_id = :track_id, gpa = :gpa, emirate = :emirate, mobile = :mobile,
        national_id = :national_id, status = :status, mentor_id = :mentor_id, enrollments = :enrollments, course_results = :course_results, notes = :notes,
        hiring = :hiring, updated_at = :updated_at WHERE id = :id`

// CandidateRepository persists candidates in PostgreSQL. Enrollments,
// results, notes and hiring info live in JSONB columns on the row.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// List returns candidates matching the filter ordered by name.
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.TrackID != "" {
		conditions = append(conditions, fmt.Sprintf("track_id = $%d", len(args)+1))
		args = append(args, filter.TrackID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := "SELECT " + candidateColumns + " FROM candidates"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	candidates := []models.Candidate{}
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

// FindByID fetches a candidate by ID.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	query := "SELECT " + candidateColumns + " FROM candidates WHERE id = $1"
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		return nil, mapError("find candidate", err)
	}
	return &candidate, nil
}

// FindByEmail fetches a candidate by email, ignoring case.
func (r *CandidateRepository) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	var candidate models.Candidate
	query := "SELECT " + candidateColumns + " FROM candidates WHERE LOWER(email) = LOWER($1) LIMIT 1"
	if err := r.db.GetContext(ctx, &candidate, query, email); err != nil {
		return nil, mapError("find candidate by email", err)
	}
	return &candidate, nil
}

// Create inserts a candidate.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	stampCandidate(candidate, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertCandidate, candidate); err != nil {
		return mapError("create candidate", err)
	}
	return nil
}

// CreateMany inserts candidates in one transaction; either all rows land or none.
func (r *CandidateRepository) CreateMany(ctx context.Context, candidates []*models.Candidate) (err error) {
	if len(candidates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin candidate import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, candidate := range candidates {
		stampCandidate(candidate, now)
		if _, err = tx.NamedExecContext(ctx, insertCandidate, candidate); err != nil {
			return mapError("create candidate "+candidate.Email, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit candidate import: %w", err)
	}
	return nil
}

// Update writes every mutable field of a candidate.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, updateCandidate, candidate)
	if err != nil {
		return mapError("update candidate", err)
	}
	return expectAffected("update candidate", res)
}

// UpdateMany writes a batch of candidates in one transaction.
func (r *CandidateRepository) UpdateMany(ctx context.Context, candidates []*models.Candidate) (err error) {
	if len(candidates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin candidate batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, candidate := range candidates {
		candidate.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, updateCandidate, candidate); err != nil {
			return mapError("update candidate "+candidate.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit candidate batch: %w", err)
	}
	return nil
}

// Delete removes a candidate permanently.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return expectAffected("delete candidate", res)
}

func stampCandidate(candidate *models.Candidate, now time.Time) {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now
	if candidate.Status == "" {
		candidate.Status = models.StatusImported
	}
}
