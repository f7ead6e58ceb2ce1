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

func TestCourseRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"code", "title", "brief", "weight", "pass_threshold", "is_required", "tracks", "active", "created_at", "updated_at"}).
		AddRow("MATH101", "Maths Pedagogy", "", 0.5, 70, true, "{t1,t3}", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses WHERE active = TRUE ORDER BY code ASC")).
		WillReturnRows(rows)

	courses, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, []string{"t1", "t3"}, []string(courses[0].Tracks))
	assert.True(t, courses[0].RequiredFor("t3"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListIncludeInactive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses ORDER BY code ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"code"}))

	courses, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET active = FALSE")).
		WithArgs("math101", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "math101")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Code: "SCI201", Title: "Science", Weight: 0.5, PassThreshold: 70, Tracks: []string{"t1"}, Active: true}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
