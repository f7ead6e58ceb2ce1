// Package eligibility derives final averages and graduation eligibility from
// candidate results and the course catalog. Every caller that needs to know
// whether a candidate can graduate goes through Evaluate.
package eligibility

import (
	"math"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

// Evaluation explains a graduation eligibility decision.
type Evaluation struct {
	Eligible   bool     `json:"eligible"`
	TrackID    string   `json:"trackId"`
	Average    *float64 `json:"average"`
	MinAverage float64  `json:"minAverage"`
	Missing    []string `json:"missing"`
	Failed     []string `json:"failed"`
	Reason     string   `json:"reason,omitempty"`
}

// Reasons reported when a candidate is not eligible.
const (
	ReasonUnknownTrack  = "track could not be resolved"
	ReasonNoAverage     = "no scored required course"
	ReasonBelowAverage  = "final average below track minimum"
	ReasonCoursesFailed = "required courses not passed"
)

// RequiredCourses returns the active required courses for trackID.
func RequiredCourses(courses []models.Course, trackID string) []models.Course {
	required := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if c.RequiredFor(trackID) {
			required = append(required, c)
		}
	}
	return required
}

// FinalAverage is the weighted mean of the candidate's scores over the
// required courses of their track, rounded to one decimal. A required course
// without a score contributes to neither sum. Returns nil when there is
// nothing to average.
func FinalAverage(candidate models.Candidate, courses []models.Course) *float64 {
	required := RequiredCourses(courses, candidate.TrackID)
	if len(required) == 0 {
		return nil
	}

	var sum, weightSum float64
	for _, c := range required {
		result, ok := candidate.ResultFor(c.Code)
		if !ok || result.Score == nil {
			continue
		}
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		sum += *result.Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return nil
	}

	avg := math.Round(sum/weightSum*10) / 10
	return &avg
}

// CoursePassed reports whether the candidate scored at least the course
// threshold. No result means not passed.
func CoursePassed(candidate models.Candidate, course models.Course) bool {
	result, ok := candidate.ResultFor(course.Code)
	if !ok || result.Score == nil {
		return false
	}
	return *result.Score >= course.Threshold()
}

// Evaluate decides graduation eligibility: the track must resolve, the final
// average must reach the track minimum and every required course must pass.
func Evaluate(candidate models.Candidate, courses []models.Course) Evaluation {
	eval := Evaluation{TrackID: candidate.TrackID, Missing: []string{}, Failed: []string{}}

	track, ok := models.TrackByID(candidate.TrackID)
	if !ok {
		eval.Reason = ReasonUnknownTrack
		return eval
	}
	eval.MinAverage = track.MinAverage
	eval.Average = FinalAverage(candidate, courses)

	for _, c := range RequiredCourses(courses, candidate.TrackID) {
		if CoursePassed(candidate, c) {
			continue
		}
		if result, found := candidate.ResultFor(c.Code); found && result.Score != nil {
			eval.Failed = append(eval.Failed, c.Code)
		} else {
			eval.Missing = append(eval.Missing, c.Code)
		}
	}

	switch {
	case eval.Average == nil:
		eval.Reason = ReasonNoAverage
	case *eval.Average < track.MinAverage:
		eval.Reason = ReasonBelowAverage
	case len(eval.Missing) > 0 || len(eval.Failed) > 0:
		eval.Reason = ReasonCoursesFailed
	default:
		eval.Eligible = true
	}
	return eval
}

// Eligible is shorthand for Evaluate(...).Eligible.
func Eligible(candidate models.Candidate, courses []models.Course) bool {
	return Evaluate(candidate, courses).Eligible
}
