package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func candidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "subject", "track_id", "gpa", "emirate", "mobile", "national_id", "status", "mentor_id", "enrollments", "course_results", "notes", "hiring", "created_at", "updated_at"})
}

func TestCandidateRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	now := time.Now()
	rows := candidateRows().AddRow("c1", "amal@example.com", "Amal", "Physics", "t1", 3.4, "Dubai", "0501234567", "784", "Assigned", nil,
		[]byte(`[{"code":"MATH101","status":"Enrolled"}]`), []byte(`[{"code":"MATH101","score":81,"pass":true}]`), []byte(`[]`), []byte(`{}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+candidateColumns+" FROM candidates WHERE status = $1 AND (LOWER(name) LIKE $2 OR LOWER(email) LIKE $2) ORDER BY name ASC")).
		WithArgs(models.StatusAssigned, "%amal%").
		WillReturnRows(rows)

	candidates, err := repo.List(context.Background(), models.CandidateFilter{Status: models.StatusAssigned, Search: "Amal"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "MATH101", candidates[0].Enrollments[0].Code)
	require.NotNil(t, candidates[0].CourseResults[0].Score)
	assert.Equal(t, 81.0, *candidates[0].CourseResults[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM candidates WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(candidateRows())

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec("INSERT INTO candidates").WillReturnError(&pq.Error{Code: "23505"})

	candidate := &models.Candidate{Email: "dup@example.com", Name: "Dup"}
	err := repo.Create(context.Background(), candidate)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NotEmpty(t, candidate.ID)
	assert.Equal(t, models.StatusImported, candidate.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreateManyCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO candidates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateMany(context.Background(), []*models.Candidate{{Email: "a@example.com"}, {Email: "b@example.com"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreateManyRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO candidates").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []*models.Candidate{{Email: "a@example.com"}, {Email: "a@example.com"}})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec("UPDATE candidates SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Candidate{ID: "gone"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM candidates WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
