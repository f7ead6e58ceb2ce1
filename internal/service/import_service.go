package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/tabular"
)

// Import kinds, used for audit entries and metric labels.
const (
	ImportKindEnrollments = "enrollments"
	ImportKindResults     = "results"
	ImportKindIntake      = "intake"
)

// ImportAction classifies one enrollment or results import row.
type ImportAction string

const (
	ImportAdd    ImportAction = "add"
	ImportUpdate ImportAction = "update"
	ImportSkip   ImportAction = "skip"
	ImportError  ImportAction = "error"
)

// Row errors reported by the enrollment and results imports.
const (
	reasonUnknownCandidate = "unknown candidate"
	reasonUnknownCourse    = "unknown course"
	reasonMissingFields    = "missing course code or candidate identifier"
	reasonInvalidScore     = "invalid score"
	reasonInvalidStatus    = "invalid enrollment status"
)

// BulkEnrollAssigner is recorded as assignedBy on imported enrollments.
const BulkEnrollAssigner = "Bulk Enroll"

var (
	candidateIDColumns    = []string{"candidate_id", "id"}
	candidateEmailColumns = []string{"candidate_email", "email", "candidate"}
	courseCodeColumns     = []string{"course_code", "course", "code"}
	cohortColumns         = []string{"cohort"}
	startDateColumns      = []string{"start_date", "start"}
	endDateColumns        = []string{"end_date", "end"}
	statusColumns         = []string{"status", "enrollment_status"}
	passedColumns         = []string{"passed", "pass"}
	scoreColumns          = []string{"score"}
)

// EnrollmentImportRow is the classification of one uploaded row.
type EnrollmentImportRow struct {
	Line          int                     `json:"line"`
	Action        ImportAction            `json:"action"`
	Reason        string                  `json:"reason,omitempty"`
	CandidateID   string                  `json:"candidateId,omitempty"`
	CandidateName string                  `json:"candidateName,omitempty"`
	Email         string                  `json:"email,omitempty"`
	CourseCode    string                  `json:"courseCode,omitempty"`
	CourseTitle   string                  `json:"courseTitle,omitempty"`
	Required      bool                    `json:"required"`
	Cohort        string                  `json:"cohort,omitempty"`
	StartDate     string                  `json:"startDate,omitempty"`
	EndDate       string                  `json:"endDate,omitempty"`
	Status        models.EnrollmentStatus `json:"status,omitempty"`
	Passed        bool                    `json:"passed"`
	Score         *float64                `json:"score,omitempty"`
}

// ImportSummary counts rows per action.
type ImportSummary struct {
	Total   int `json:"total"`
	Add     int `json:"add"`
	Update  int `json:"update"`
	Skip    int `json:"skip"`
	Error   int `json:"error"`
	Changed int `json:"changedCandidates,omitempty"`
}

// EnrollmentImportReport is returned by both preview and commit.
type EnrollmentImportReport struct {
	Kind      string                `json:"kind"`
	Committed bool                  `json:"committed"`
	Rows      []EnrollmentImportRow `json:"rows"`
	Summary   ImportSummary         `json:"summary"`
}

type importCandidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	CreateMany(ctx context.Context, candidates []*models.Candidate) error
	UpdateMany(ctx context.Context, candidates []*models.Candidate) error
}

// ImportService runs the dry-run and commit steps of the bulk enrollment,
// results and intake imports. Commit always re-classifies against current
// state before writing.
type ImportService struct {
	candidates importCandidateRepository
	courses    courseCatalog
	audit      auditRecorder
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewImportService constructs the import service.
func NewImportService(candidates importCandidateRepository, courses courseCatalog, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		candidates: candidates,
		courses:    courses,
		audit:      auditRecorder{repo: audit, logger: logger},
		metrics:    metrics,
		validator:  ensureValidator(validate),
		logger:     logger,
		now:        time.Now,
	}
}

// PreviewEnrollments classifies an enrollment upload without writing.
func (s *ImportService) PreviewEnrollments(ctx context.Context, filename string, r io.Reader) (*EnrollmentImportReport, error) {
	report, _, err := s.classifyUpload(ctx, ImportKindEnrollments, filename, r)
	return report, err
}

// CommitEnrollments applies add and update rows of an enrollment upload.
func (s *ImportService) CommitEnrollments(ctx context.Context, actor Actor, filename string, r io.Reader) (*EnrollmentImportReport, error) {
	return s.commit(ctx, actor, ImportKindEnrollments, filename, r)
}

// PreviewResults classifies a results upload without writing.
func (s *ImportService) PreviewResults(ctx context.Context, filename string, r io.Reader) (*EnrollmentImportReport, error) {
	report, _, err := s.classifyUpload(ctx, ImportKindResults, filename, r)
	return report, err
}

// CommitResults applies a results upload.
func (s *ImportService) CommitResults(ctx context.Context, actor Actor, filename string, r io.Reader) (*EnrollmentImportReport, error) {
	return s.commit(ctx, actor, ImportKindResults, filename, r)
}

func (s *ImportService) commit(ctx context.Context, actor Actor, kind, filename string, r io.Reader) (*EnrollmentImportReport, error) {
	report, state, err := s.classifyUpload(ctx, kind, filename, r)
	if err != nil {
		return nil, err
	}

	changed := ApplyEnrollmentRows(state.candidates, state.courses, report.Rows, s.now().UTC())
	if len(changed) > 0 {
		if err := s.candidates.UpdateMany(ctx, changed); err != nil {
			return nil, internalError(err, "failed to apply import")
		}
	}
	report.Committed = true
	report.Summary.Changed = len(changed)

	s.metrics.RecordImportRows(kind, string(ImportAdd), report.Summary.Add)
	s.metrics.RecordImportRows(kind, string(ImportUpdate), report.Summary.Update)
	s.audit.record(ctx, actor, models.AuditActionImportCommit, "import", "", models.AuditDetails{
		"kind":    kind,
		"file":    filename,
		"added":   report.Summary.Add,
		"updated": report.Summary.Update,
		"errors":  report.Summary.Error,
	})
	s.logger.Info("import committed",
		zap.String("kind", kind),
		zap.Int("added", report.Summary.Add),
		zap.Int("updated", report.Summary.Update),
		zap.Int("errors", report.Summary.Error),
	)
	return report, nil
}

type importState struct {
	candidates []models.Candidate
	courses    []models.Course
}

func (s *ImportService) classifyUpload(ctx context.Context, kind, filename string, r io.Reader) (*EnrollmentImportReport, *importState, error) {
	header, rows, err := parseUpload(filename, r)
	if err != nil {
		return nil, nil, err
	}
	if !tabular.Has(header, courseCodeColumns...) || !(tabular.Has(header, candidateIDColumns...) || tabular.Has(header, candidateEmailColumns...)) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file needs a course_code column and a candidate_id or candidate_email column")
	}

	state, err := s.loadState(ctx)
	if err != nil {
		return nil, nil, err
	}
	classified := ClassifyEnrollmentRows(rows, state.candidates, state.courses, kind == ImportKindResults)
	return &EnrollmentImportReport{Kind: kind, Rows: classified, Summary: summarize(classified)}, state, nil
}

func (s *ImportService) loadState(ctx context.Context) (*importState, error) {
	candidates, err := s.candidates.List(ctx, models.CandidateFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list candidates")
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	return &importState{candidates: candidates, courses: courses}, nil
}

// ClassifyEnrollmentRows decides an action for every row without mutating
// anything. A second row for the same candidate and course in one file is
// classified as an update of the first.
func ClassifyEnrollmentRows(rows []tabular.Row, candidates []models.Candidate, courses []models.Course, withResults bool) []EnrollmentImportRow {
	pending := make(map[string]bool)
	out := make([]EnrollmentImportRow, 0, len(rows))

	for _, row := range rows {
		if row.Blank() {
			continue
		}
		item := EnrollmentImportRow{
			Line:       row.Line,
			CourseCode: row.Get(courseCodeColumns...),
			Cohort:     row.Get(cohortColumns...),
			StartDate:  row.Get(startDateColumns...),
			EndDate:    row.Get(endDateColumns...),
		}
		id := row.Get(candidateIDColumns...)
		email := row.Get(candidateEmailColumns...)
		item.CandidateID = id
		item.Email = email

		if item.CourseCode == "" || (id == "" && email == "") {
			item.Action, item.Reason = ImportSkip, reasonMissingFields
			out = append(out, item)
			continue
		}

		candidate := findCandidate(candidates, id, email)
		if candidate == nil {
			item.Action, item.Reason = ImportError, reasonUnknownCandidate
			out = append(out, item)
			continue
		}
		item.CandidateID = candidate.ID
		item.CandidateName = candidate.Name
		item.Email = candidate.Email

		course := findCourse(courses, item.CourseCode)
		if course == nil {
			item.Action, item.Reason = ImportError, reasonUnknownCourse
			out = append(out, item)
			continue
		}
		item.CourseCode = course.Code
		item.CourseTitle = course.Title
		item.Required = course.IsRequired

		if raw := row.Get(statusColumns...); raw != "" {
			status, err := models.ParseEnrollmentStatus(raw)
			if err != nil {
				item.Action, item.Reason = ImportError, reasonInvalidStatus
				out = append(out, item)
				continue
			}
			item.Status = status
		}

		if withResults {
			item.Passed = truthy(row.Get(passedColumns...))
			if raw := row.Get(scoreColumns...); raw != "" {
				score, err := strconv.ParseFloat(raw, 64)
				if err != nil || score < 0 || score > 100 {
					item.Action, item.Reason = ImportError, reasonInvalidScore
					out = append(out, item)
					continue
				}
				item.Score = &score
			}
		}

		key := candidate.ID + "|" + strings.ToUpper(course.Code)
		if candidate.EnrollmentFor(course.Code) >= 0 || pending[key] {
			item.Action = ImportUpdate
		} else {
			item.Action = ImportAdd
			pending[key] = true
		}
		out = append(out, item)
	}
	return out
}

// ApplyEnrollmentRows applies add and update rows to candidates in place and
// returns the candidates that changed. Adds create Enrolled enrollments
// assigned by the bulk importer; updates merge non-empty values and never move
// a Completed enrollment backwards. Rows flagged passed also write the course
// result and complete the enrollment.
func ApplyEnrollmentRows(candidates []models.Candidate, courses []models.Course, rows []EnrollmentImportRow, now time.Time) []*models.Candidate {
	byID := make(map[string]*models.Candidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}

	changedIDs := make(map[string]bool)
	changed := make([]*models.Candidate, 0)
	today := now.Format(dateLayout)

	for _, row := range rows {
		if row.Action != ImportAdd && row.Action != ImportUpdate {
			continue
		}
		candidate, ok := byID[row.CandidateID]
		if !ok {
			continue
		}

		idx := candidate.EnrollmentFor(row.CourseCode)
		if idx < 0 {
			ts := now
			candidate.Enrollments = append(candidate.Enrollments, models.Enrollment{
				Code:       row.CourseCode,
				Cohort:     row.Cohort,
				StartDate:  row.StartDate,
				EndDate:    row.EndDate,
				Status:     models.EnrollmentEnrolled,
				AssignedBy: BulkEnrollAssigner,
				AssignedTs: &ts,
			})
			idx = len(candidate.Enrollments) - 1
			promoteOnAssignment(candidate)
		} else {
			mergeEnrollment(&candidate.Enrollments[idx], row)
		}
		if row.Status != "" {
			setEnrollmentStatus(&candidate.Enrollments[idx], row.Status)
		}

		if row.Passed {
			date := row.EndDate
			if date == "" {
				date = today
			}
			result := models.CourseResult{Code: row.CourseCode, Score: row.Score, Pass: true, Date: date}
			if row.Score != nil {
				if course := findCourse(courses, row.CourseCode); course != nil {
					result.Pass = *row.Score >= course.Threshold()
				}
			}
			candidate.SetResult(result)
			candidate.Enrollments[idx].Status = models.EnrollmentCompleted
			candidate.Enrollments[idx].EndDate = date
		}

		if !changedIDs[candidate.ID] {
			changedIDs[candidate.ID] = true
			changed = append(changed, candidate)
		}
	}
	return changed
}

func mergeEnrollment(e *models.Enrollment, row EnrollmentImportRow) {
	if row.Cohort != "" {
		e.Cohort = row.Cohort
	}
	if row.StartDate != "" {
		e.StartDate = row.StartDate
	}
	if row.EndDate != "" {
		e.EndDate = row.EndDate
	}
}

// setEnrollmentStatus applies status unless it would regress a Completed enrollment.
func setEnrollmentStatus(e *models.Enrollment, status models.EnrollmentStatus) {
	if e.Status == models.EnrollmentCompleted && status.Rank() < e.Status.Rank() {
		return
	}
	e.Status = status
}

func summarize(rows []EnrollmentImportRow) ImportSummary {
	summary := ImportSummary{Total: len(rows)}
	for _, row := range rows {
		switch row.Action {
		case ImportAdd:
			summary.Add++
		case ImportUpdate:
			summary.Update++
		case ImportSkip:
			summary.Skip++
		case ImportError:
			summary.Error++
		}
	}
	return summary
}

func findCandidate(candidates []models.Candidate, id, email string) *models.Candidate {
	if id != "" {
		for i := range candidates {
			if candidates[i].ID == id {
				return &candidates[i]
			}
		}
	}
	if email != "" {
		for i := range candidates {
			if strings.EqualFold(candidates[i].Email, email) {
				return &candidates[i]
			}
		}
	}
	return nil
}

func findCourse(courses []models.Course, code string) *models.Course {
	for i := range courses {
		if models.SameCode(courses[i].Code, code) {
			return &courses[i]
		}
	}
	return nil
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1", "pass", "passed":
		return true
	}
	return false
}

func parseUpload(filename string, r io.Reader) ([]string, []tabular.Row, error) {
	header, rows, err := tabular.Parse(filename, r)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) || errors.Is(err, tabular.ErrNoHeader) {
			return nil, nil, validationError(err, err.Error())
		}
		return nil, nil, validationError(err, "failed to read upload")
	}
	return header, rows, nil
}
