package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

func TestCourseServiceCreateAppliesDefaults(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, nil, nil)

	course, err := svc.Create(context.Background(), CourseRequest{Code: " pd100 ", Title: "Pedagogy", IsRequired: true, Tracks: []string{"t1", "t2"}})
	require.NoError(t, err)
	assert.Equal(t, "PD100", course.Code)
	assert.Equal(t, 0.3, course.Weight)
	assert.Equal(t, 70, course.PassThreshold)
	assert.True(t, course.Active)

	_, err = svc.Create(context.Background(), CourseRequest{Code: "PD100", Title: "Again"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(context.Background(), CourseRequest{Code: "X1", Title: "Bad", Tracks: []string{"t9"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceUpdateKeepsCode(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(testCourses()...), nil, nil)

	course, err := svc.Update(context.Background(), "math101", CourseRequest{Title: "Maths", Weight: 0.6, PassThreshold: 75, IsRequired: true, Tracks: []string{"t1"}})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", course.Code)
	assert.Equal(t, 75, course.PassThreshold)
	assert.True(t, course.Active)

	_, err = svc.Update(context.Background(), "MATH101", CourseRequest{Code: "MATH999", Title: "Renamed"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(context.Background(), "NOPE", CourseRequest{Title: "x"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceDeleteIsSoft(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(testCourses()...), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "MATH101"))

	active, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	for _, c := range active {
		assert.NotEqual(t, "MATH101", c.Code)
	}

	course, err := svc.Get(context.Background(), "MATH101")
	require.NoError(t, err)
	assert.False(t, course.Active)

	assert.ErrorIs(t, svc.Delete(context.Background(), "NOPE"), appErrors.ErrNotFound)
}

func TestMentorServiceCRUD(t *testing.T) {
	svc := NewMentorService(newFakeMentorRepo(), nil, nil)

	mentor, err := svc.Create(context.Background(), MentorRequest{Name: "Omar", Email: "Omar@Example.com", Phone: "+971501234567"})
	require.NoError(t, err)
	assert.Equal(t, "omar@example.com", mentor.Email)
	assert.True(t, mentor.Active)

	_, err = svc.Create(context.Background(), MentorRequest{Name: "Other", Email: "omar@example.com"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	inactive := false
	updated, err := svc.Update(context.Background(), mentor.ID, MentorRequest{Name: "Omar K", Email: "omar@example.com", Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Omar K", updated.Name)
	assert.False(t, updated.Active)

	require.NoError(t, svc.Delete(context.Background(), mentor.ID))
	_, err = svc.Get(context.Background(), mentor.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
