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

const userColumns = `id, email, password_hash, name, role, active, subject, gpa, emirate, mobile, national_id, applicant_status, last_login, created_at, updated_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, mapError("find user by email", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1 LIMIT 1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, mapError("find user by id", err)
	}
	return &user, nil
}

// List returns users matching the filter ordered by creation time.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (` + userColumns + `)
        VALUES (:id, :email, :password_hash, :name, :role, :active, :subject, :gpa, :emirate, :mobile, :national_id, :applicant_status, :last_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return mapError("create user", err)
	}
	return nil
}

// Update writes profile, role and applicant fields. Passwords go through UpdatePassword.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, name = :name, role = :role, active = :active, subject = :subject, gpa = :gpa, emirate = :emirate,
        mobile = :mobile, national_id = :national_id, applicant_status = :applicant_status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return mapError("update user", err)
	}
	return expectAffected("update user", res)
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectAffected("update password", res)
}

// Delete removes a user permanently.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected("delete user", res)
}
