package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Candidate is one trainee moving through the pipeline.
type Candidate struct {
	ID            string          `db:"id" json:"id"`
	Email         string          `db:"email" json:"email"`
	Name          string          `db:"name" json:"name"`
	Subject       string          `db:"subject" json:"subject"`
	TrackID       string          `db:"track_id" json:"trackId"`
	GPA           *float64        `db:"gpa" json:"gpa,omitempty"`
	Emirate       string          `db:"emirate" json:"emirate"`
	Mobile        string          `db:"mobile" json:"mobile"`
	NationalID    string          `db:"national_id" json:"nationalId"`
	Status        CandidateStatus `db:"status" json:"status"`
	MentorID      *string         `db:"mentor_id" json:"mentorId,omitempty"`
	Enrollments   Enrollments     `db:"enrollments" json:"enrollments"`
	CourseResults CourseResults   `db:"course_results" json:"courseResults"`
	Notes         Notes           `db:"notes" json:"notes"`
	Hiring        HiringInfo      `db:"hiring" json:"hiring"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	Status  CandidateStatus
	TrackID string
	Search  string
}

// Enrollment is a candidate's assignment to a course offering.
type Enrollment struct {
	Code       string           `json:"code"`
	Cohort     string           `json:"cohort,omitempty"`
	StartDate  string           `json:"startDate,omitempty"`
	EndDate    string           `json:"endDate,omitempty"`
	Status     EnrollmentStatus `json:"status"`
	AssignedBy string           `json:"assignedBy,omitempty"`
	AssignedTs *time.Time       `json:"assignedTs,omitempty"`
}

// CourseResult is the scored outcome of a course.
type CourseResult struct {
	Code  string   `json:"code"`
	Score *float64 `json:"score,omitempty"`
	Pass  bool     `json:"pass"`
	Date  string   `json:"date,omitempty"`
}

// Note is a free-text staff remark.
type Note struct {
	Text   string    `json:"text"`
	Author string    `json:"author,omitempty"`
	Ts     time.Time `json:"ts"`
}

// HiringInfo tracks placement after graduation.
type HiringInfo struct {
	Stage     HiringStage `json:"stage,omitempty"`
	School    string      `json:"school,omitempty"`
	Position  string      `json:"position,omitempty"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
}

// Enrollments is stored as a JSON document.
type Enrollments []Enrollment

// CourseResults is stored as a JSON document.
type CourseResults []CourseResult

// Notes is stored as a JSON document, most recent first.
type Notes []Note

// Value implements driver.Valuer.
func (e Enrollments) Value() (driver.Value, error) { return jsonValue(e, "[]") }

// Scan implements sql.Scanner.
func (e *Enrollments) Scan(src interface{}) error { return jsonScan(src, e) }

// Value implements driver.Valuer.
func (r CourseResults) Value() (driver.Value, error) { return jsonValue(r, "[]") }

// Scan implements sql.Scanner.
func (r *CourseResults) Scan(src interface{}) error { return jsonScan(src, r) }

// Value implements driver.Valuer.
func (n Notes) Value() (driver.Value, error) { return jsonValue(n, "[]") }

// Scan implements sql.Scanner.
func (n *Notes) Scan(src interface{}) error { return jsonScan(src, n) }

// Value implements driver.Valuer.
func (h HiringInfo) Value() (driver.Value, error) { return jsonValue(h, "{}") }

// Scan implements sql.Scanner.
func (h *HiringInfo) Scan(src interface{}) error { return jsonScan(src, h) }

func jsonValue(v interface{}, empty string) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return empty, nil
	}
	return string(raw), nil
}

func jsonScan(src interface{}, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json source %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// EnrollmentFor returns the enrollment index for code, or -1.
func (c *Candidate) EnrollmentFor(code string) int {
	for i, e := range c.Enrollments {
		if SameCode(e.Code, code) {
			return i
		}
	}
	return -1
}

// ResultFor returns the course result for code, if any.
func (c *Candidate) ResultFor(code string) (CourseResult, bool) {
	for _, r := range c.CourseResults {
		if SameCode(r.Code, code) {
			return r, true
		}
	}
	return CourseResult{}, false
}

// SetResult replaces the result for the same code or appends a new one.
func (c *Candidate) SetResult(result CourseResult) {
	for i, r := range c.CourseResults {
		if SameCode(r.Code, result.Code) {
			c.CourseResults[i] = result
			return
		}
	}
	c.CourseResults = append(c.CourseResults, result)
}

// NormalizeEmail lower-cases and trims an email for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
