package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateSetResultOverwritesByCode(t *testing.T) {
	score := 60.0
	better := 85.0
	c := &Candidate{}
	c.SetResult(CourseResult{Code: "MATH101", Score: &score})
	c.SetResult(CourseResult{Code: "math101", Score: &better, Pass: true})

	require.Len(t, c.CourseResults, 1)
	result, ok := c.ResultFor("MATH101")
	require.True(t, ok)
	assert.Equal(t, 85.0, *result.Score)
}

func TestEnrollmentsValueAndScan(t *testing.T) {
	var empty Enrollments
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var scanned Enrollments
	require.NoError(t, scanned.Scan([]byte(`[{"code":"SCI201","status":"Enrolled"}]`)))
	require.Len(t, scanned, 1)
	assert.Equal(t, EnrollmentEnrolled, scanned[0].Status)

	require.Error(t, scanned.Scan(42))
}

func TestCandidateStatusOrdering(t *testing.T) {
	assert.True(t, StatusGraduated.AtOrPast(StatusAssigned))
	assert.False(t, StatusAssigned.AtOrPast(StatusGraduated))
	assert.False(t, StatusOnHold.AtOrPast(StatusImported))

	status, err := ParseCandidateStatus("ready for hiring")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForHiring, status)

	_, err = ParseCandidateStatus("Deployed")
	assert.Error(t, err)
}

func TestCourseRequiredFor(t *testing.T) {
	course := Course{Code: "MATH101", IsRequired: true, Tracks: []string{"t1"}, Active: true}
	assert.True(t, course.RequiredFor("t1"))
	assert.False(t, course.RequiredFor("t2"))

	course.Active = false
	assert.False(t, course.RequiredFor("t1"))
}

func TestSubjectTrack(t *testing.T) {
	assert.Equal(t, "t1", SubjectTrack(" Physics "))
	assert.Equal(t, "t3", SubjectTrack("computer science"))
	assert.Equal(t, "", SubjectTrack("History"))
}

func TestCourseUnmarshalDefaultsActive(t *testing.T) {
	var courses []Course
	require.NoError(t, json.Unmarshal([]byte(`[
		{"code":"MATH101","isRequired":true,"tracks":["t1"]},
		{"code":"OLD100","active":false},
		{"code":"SCI201","active":true,"passThreshold":60}
	]`), &courses))

	require.Len(t, courses, 3)
	assert.True(t, courses[0].Active)
	assert.True(t, courses[0].RequiredFor("t1"))
	assert.False(t, courses[1].Active)
	assert.True(t, courses[2].Active)
	assert.Equal(t, 60.0, courses[2].Threshold())
}
