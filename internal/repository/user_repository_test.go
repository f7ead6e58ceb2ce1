package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "active", "subject", "gpa", "emirate", "mobile", "national_id", "applicant_status", "last_login", "created_at", "updated_at"})
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := userRows().AddRow("1", "user@example.com", "hash", "User", string(models.RoleTeacher), true, "Physics", 3.2, "Dubai", "0501234567", "", "Pending", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("User@Example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "User@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	require.NotNil(t, user.ApplicantStatus)
	assert.Equal(t, models.ApplicantPending, *user.ApplicantStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE LOWER").WillReturnRows(userRows())

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListUsersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	role := models.RoleTeacher
	rows := userRows().AddRow("1", "a@example.com", "hash", "A", string(models.RoleTeacher), true, "", nil, "", "", "", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE role = $1 ORDER BY created_at DESC")).
		WithArgs(role).
		WillReturnRows(rows)

	users, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordMissingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET password_hash").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "x", "hash", time.Now())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionLogin, Resource: "user", Details: models.AuditDetails{"ip": "127.0.0.1"}}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mentors WHERE id = $1")).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
