package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type candidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	CreateMany(ctx context.Context, candidates []*models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdateMany(ctx context.Context, candidates []*models.Candidate) error
	Delete(ctx context.Context, id string) error
}

type courseCatalog interface {
	List(ctx context.Context, includeInactive bool) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

// CandidateRequest is the create/update payload for a candidate.
type CandidateRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Name       string   `json:"name" validate:"required"`
	Subject    string   `json:"subject" validate:"required"`
	GPA        *float64 `json:"gpa" validate:"omitempty,gte=0,lte=4"`
	Emirate    string   `json:"emirate"`
	Mobile     string   `json:"mobile" validate:"omitempty,uae_mobile"`
	NationalID string   `json:"nationalId"`
	Status     string   `json:"status" validate:"omitempty,candidate_status"`
	MentorID   *string  `json:"mentorId"`
}

// BulkCreateError reports one rejected item of a bulk create.
type BulkCreateError struct {
	Index   int    `json:"index"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// BulkCreateResult summarises a bulk create.
type BulkCreateResult struct {
	Created    int                `json:"created"`
	Candidates []models.Candidate `json:"candidates"`
	Errors     []BulkCreateError  `json:"errors"`
}

// EnrollmentRequest assigns a course to a candidate.
type EnrollmentRequest struct {
	Code      string `json:"code" validate:"required"`
	Cohort    string `json:"cohort"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Status    string `json:"status" validate:"omitempty,enrollment_status"`
}

// EnrollmentUpdateRequest merges into an existing enrollment; nil fields are kept.
type EnrollmentUpdateRequest struct {
	Cohort    *string `json:"cohort"`
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"omitempty,enrollment_status"`
}

// ResultRequest records a course outcome.
type ResultRequest struct {
	Score *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Pass  *bool    `json:"pass"`
	Date  string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// NoteRequest adds a staff note.
type NoteRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// StatusRequest moves a candidate to another status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,candidate_status"`
}

// HiringRequest updates post-graduation placement.
type HiringRequest struct {
	Stage    string `json:"stage" validate:"required"`
	School   string `json:"school"`
	Position string `json:"position"`
}

// CandidateService handles candidate records, their enrollments, results,
// notes and hiring stage.
type CandidateService struct {
	repo      candidateRepository
	courses   courseCatalog
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCandidateService constructs the candidate service.
func NewCandidateService(repo candidateRepository, courses courseCatalog, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	validate = ensureValidator(validate)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{
		repo:      repo,
		courses:   courses,
		audit:     auditRecorder{repo: audit, logger: logger},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns candidates matching the filter.
func (s *CandidateService) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	candidates, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list candidates")
	}
	return candidates, nil
}

// ListByStatus returns candidates in the named status.
func (s *CandidateService) ListByStatus(ctx context.Context, raw string) ([]models.Candidate, error) {
	status, err := models.ParseCandidateStatus(raw)
	if err != nil {
		return nil, validationError(err, "unknown candidate status")
	}
	return s.List(ctx, models.CandidateFilter{Status: status})
}

// Get returns a candidate by ID.
func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "candidate not found", "", "failed to load candidate")
	}
	return candidate, nil
}

// Create registers a new candidate. The track is derived from the subject.
func (s *CandidateService) Create(ctx context.Context, req CandidateRequest) (*models.Candidate, error) {
	candidate, err := s.buildCandidate(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, repoError(err, "", "candidate email already exists", "failed to create candidate")
	}
	return candidate, nil
}

// BulkCreate creates every valid item and reports the rest.
func (s *CandidateService) BulkCreate(ctx context.Context, reqs []CandidateRequest) (*BulkCreateResult, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no candidates supplied")
	}
	result := &BulkCreateResult{Candidates: []models.Candidate{}, Errors: []BulkCreateError{}}
	for i, req := range reqs {
		candidate, err := s.Create(ctx, req)
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Status >= 500 {
				return nil, err
			}
			result.Errors = append(result.Errors, BulkCreateError{Index: i, Email: req.Email, Message: appErrors.FromError(err).Message})
			continue
		}
		result.Candidates = append(result.Candidates, *candidate)
	}
	result.Created = len(result.Candidates)
	s.logger.Info("bulk candidate create", zap.Int("created", result.Created), zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// Update replaces the profile fields of a candidate. Status is kept when the
// request leaves it empty.
func (s *CandidateService) Update(ctx context.Context, id string, req CandidateRequest) (*models.Candidate, error) {
	updated, err := s.buildCandidate(req)
	if err != nil {
		return nil, err
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.Email = updated.Email
	candidate.Name = updated.Name
	candidate.Subject = updated.Subject
	candidate.TrackID = updated.TrackID
	candidate.GPA = updated.GPA
	candidate.Emirate = updated.Emirate
	candidate.Mobile = updated.Mobile
	candidate.NationalID = updated.NationalID
	candidate.MentorID = updated.MentorID
	if req.Status != "" {
		candidate.Status = updated.Status
	}

	return s.save(ctx, candidate)
}

// Delete removes a candidate permanently.
func (s *CandidateService) Delete(ctx context.Context, actor Actor, id string) error {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "candidate not found", "", "failed to delete candidate")
	}
	s.audit.record(ctx, actor, models.AuditActionCandidateDelete, "candidate", id, models.AuditDetails{"email": candidate.Email, "name": candidate.Name})
	return nil
}

// AssignEnrollment enrolls a candidate on an active course. Candidates still
// at Imported or Eligible move to Assigned.
func (s *CandidateService) AssignEnrollment(ctx context.Context, actor Actor, id string, req EnrollmentRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is inactive")
	}
	if candidate.EnrollmentFor(course.Code) >= 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "candidate already enrolled in "+course.Code)
	}

	status := models.EnrollmentEnrolled
	if req.Status != "" {
		if status, err = models.ParseEnrollmentStatus(req.Status); err != nil {
			return nil, validationError(err, "invalid enrollment status")
		}
	}
	ts := s.now().UTC()
	candidate.Enrollments = append(candidate.Enrollments, models.Enrollment{
		Code:       course.Code,
		Cohort:     strings.TrimSpace(req.Cohort),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     status,
		AssignedBy: actor.Label(),
		AssignedTs: &ts,
	})
	promoteOnAssignment(candidate)

	return s.save(ctx, candidate)
}

// UpdateEnrollment merges changes into the enrollment for code.
func (s *CandidateService) UpdateEnrollment(ctx context.Context, id, code string, req EnrollmentUpdateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := candidate.EnrollmentFor(code)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	var status models.EnrollmentStatus
	if req.Status != "" {
		if status, err = models.ParseEnrollmentStatus(req.Status); err != nil {
			return nil, validationError(err, "invalid enrollment status")
		}
	}

	enrollment := &candidate.Enrollments[idx]
	if req.Cohort != nil {
		enrollment.Cohort = strings.TrimSpace(*req.Cohort)
	}
	if req.StartDate != nil {
		enrollment.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		enrollment.EndDate = *req.EndDate
	}
	if status != "" {
		enrollment.Status = status
	}

	return s.save(ctx, candidate)
}

// RemoveEnrollment drops the enrollment for code. Results are kept.
func (s *CandidateService) RemoveEnrollment(ctx context.Context, id, code string) (*models.Candidate, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := candidate.EnrollmentFor(code)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	candidate.Enrollments = append(candidate.Enrollments[:idx], candidate.Enrollments[idx+1:]...)
	return s.save(ctx, candidate)
}

// RecordResult upserts the result for a course. Pass is derived from the
// course threshold when a score is given; the matching enrollment, if any,
// becomes Completed.
func (s *CandidateService) RecordResult(ctx context.Context, id, code string, req ResultRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid result payload")
	}
	if req.Score == nil && req.Pass == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score or pass is required")
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, code)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	}
	result := models.CourseResult{Code: course.Code, Score: req.Score, Date: date}
	if req.Score != nil {
		result.Pass = *req.Score >= course.Threshold()
	} else {
		result.Pass = *req.Pass
	}
	candidate.SetResult(result)

	if idx := candidate.EnrollmentFor(course.Code); idx >= 0 {
		candidate.Enrollments[idx].Status = models.EnrollmentCompleted
		if candidate.Enrollments[idx].EndDate == "" {
			candidate.Enrollments[idx].EndDate = date
		}
	}

	return s.save(ctx, candidate)
}

// AddNote prepends a note so the newest is first.
func (s *CandidateService) AddNote(ctx context.Context, actor Actor, id string, req NoteRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid note payload")
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	note := models.Note{Text: strings.TrimSpace(req.Text), Author: actor.Label(), Ts: s.now().UTC()}
	candidate.Notes = append(models.Notes{note}, candidate.Notes...)
	return s.save(ctx, candidate)
}

// SetStatus performs an explicit staff transition.
func (s *CandidateService) SetStatus(ctx context.Context, actor Actor, id string, req StatusRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	status, _ := models.ParseCandidateStatus(req.Status)
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := candidate.Status
	candidate.Status = status
	saved, err := s.save(ctx, candidate)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionCandidateStatus, "candidate", id, models.AuditDetails{"from": previous, "to": status})
	return saved, nil
}

// UpdateHiring records the hiring stage. Ready and Hired also move the
// candidate status.
func (s *CandidateService) UpdateHiring(ctx context.Context, id string, req HiringRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hiring payload")
	}
	stage, err := models.ParseHiringStage(req.Stage)
	if err != nil {
		return nil, validationError(err, "unknown hiring stage")
	}
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	candidate.Hiring = models.HiringInfo{
		Stage:     stage,
		School:    strings.TrimSpace(req.School),
		Position:  strings.TrimSpace(req.Position),
		UpdatedAt: &ts,
	}
	switch stage {
	case models.HiringReady:
		candidate.Status = models.StatusReadyForHiring
	case models.HiringHired:
		candidate.Status = models.StatusHiredClosed
	}
	return s.save(ctx, candidate)
}

// Eligibility evaluates graduation eligibility for one candidate.
func (s *CandidateService) Eligibility(ctx context.Context, id string) (*eligibility.Evaluation, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	eval := eligibility.Evaluate(*candidate, courses)
	return &eval, nil
}

func (s *CandidateService) buildCandidate(req CandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid candidate payload")
	}
	status := models.StatusImported
	if req.Status != "" {
		status, _ = models.ParseCandidateStatus(req.Status)
	}
	var mentorID *string
	if req.MentorID != nil && strings.TrimSpace(*req.MentorID) != "" {
		id := strings.TrimSpace(*req.MentorID)
		mentorID = &id
	}
	return &models.Candidate{
		Email:         models.NormalizeEmail(req.Email),
		Name:          strings.TrimSpace(req.Name),
		Subject:       strings.TrimSpace(req.Subject),
		TrackID:       models.SubjectTrack(req.Subject),
		GPA:           req.GPA,
		Emirate:       strings.TrimSpace(req.Emirate),
		Mobile:        compactPhone(strings.TrimSpace(req.Mobile)),
		NationalID:    strings.TrimSpace(req.NationalID),
		Status:        status,
		MentorID:      mentorID,
		Enrollments:   models.Enrollments{},
		CourseResults: models.CourseResults{},
		Notes:         models.Notes{},
	}, nil
}

func (s *CandidateService) course(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courses.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, repoError(err, "course not found", "", "failed to load course")
	}
	return course, nil
}

func (s *CandidateService) save(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, repoError(err, "candidate not found", "candidate email already exists", "failed to update candidate")
	}
	return candidate, nil
}

// promoteOnAssignment applies the only automatic transition: a new
// enrollment moves Imported and Eligible candidates to Assigned.
func promoteOnAssignment(candidate *models.Candidate) {
	if candidate.Status == models.StatusImported || candidate.Status == models.StatusEligible {
		candidate.Status = models.StatusAssigned
	}
}
