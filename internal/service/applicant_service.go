package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type applicantUserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type applicantCandidateRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
}

// ApplicantService reviews self-registered teachers and promotes accepted
// applicants into candidates.
type ApplicantService struct {
	users      applicantUserRepository
	candidates applicantCandidateRepository
	audit      auditRecorder
	logger     *zap.Logger
}

// NewApplicantService constructs the applicant service.
func NewApplicantService(users applicantUserRepository, candidates applicantCandidateRepository, audit auditWriter, logger *zap.Logger) *ApplicantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{
		users:      users,
		candidates: candidates,
		audit:      auditRecorder{repo: audit, logger: logger},
		logger:     logger,
	}
}

// List returns every Teacher role user.
func (s *ApplicantService) List(ctx context.Context) ([]models.User, error) {
	role := models.RoleTeacher
	users, err := s.users.List(ctx, models.UserFilter{Role: &role})
	if err != nil {
		return nil, internalError(err, "failed to list applicants")
	}
	return users, nil
}

// Accept copies the applicant's profile into a new candidate and marks the
// application Accepted.
func (s *ApplicantService) Accept(ctx context.Context, actor Actor, email string) (*models.Candidate, error) {
	applicant, err := s.applicant(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := s.candidates.FindByEmail(ctx, applicant.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a candidate with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError(err, "failed to check candidate email")
	}

	candidate := &models.Candidate{
		Email:         applicant.Email,
		Name:          applicant.Name,
		Subject:       applicant.Subject,
		TrackID:       models.SubjectTrack(applicant.Subject),
		GPA:           applicant.GPA,
		Emirate:       applicant.Emirate,
		Mobile:        applicant.Mobile,
		NationalID:    applicant.NationalID,
		Status:        models.StatusImported,
		Enrollments:   models.Enrollments{},
		CourseResults: models.CourseResults{},
		Notes:         models.Notes{},
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, repoError(err, "", "a candidate with this email already exists", "failed to create candidate")
	}

	if err := s.setStatus(ctx, applicant, models.ApplicantAccepted); err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionApplicantAccept, "user", applicant.ID, models.AuditDetails{"candidateId": candidate.ID})
	s.logger.Info("applicant accepted", zap.String("user_id", applicant.ID), zap.String("candidate_id", candidate.ID))
	return candidate, nil
}

// Reject marks the application Rejected.
func (s *ApplicantService) Reject(ctx context.Context, actor Actor, email string) (*models.User, error) {
	applicant, err := s.applicant(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, applicant, models.ApplicantRejected); err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionApplicantReject, "user", applicant.ID, nil)
	return applicant, nil
}

func (s *ApplicantService) applicant(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, repoError(err, "applicant not found", "", "failed to load applicant")
	}
	if user.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
	}
	return user, nil
}

func (s *ApplicantService) setStatus(ctx context.Context, user *models.User, status models.ApplicantStatus) error {
	user.ApplicantStatus = &status
	if err := s.users.Update(ctx, user); err != nil {
		return repoError(err, "applicant not found", "", "failed to update applicant")
	}
	return nil
}
