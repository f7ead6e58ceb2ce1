package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type graduationCandidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdateMany(ctx context.Context, candidates []*models.Candidate) error
}

// Graduation approval modes, used as metric labels.
const (
	graduationModeApprove = "approve"
	graduationModeForce   = "force"
	graduationModeBulk    = "bulk"
)

// ReviewEntry pairs a candidate with its eligibility evaluation.
type ReviewEntry struct {
	Candidate  models.Candidate       `json:"candidate"`
	Evaluation eligibility.Evaluation `json:"evaluation"`
}

// GraduationReview splits reviewable candidates into eligible and exceptions.
type GraduationReview struct {
	Eligible   []ReviewEntry `json:"eligible"`
	Exceptions []ReviewEntry `json:"exceptions"`
}

// ApproveAllResult reports how many candidates graduated in a bulk approval.
type ApproveAllResult struct {
	Applied int `json:"applied"`
}

// GraduationService reviews and approves graduations.
type GraduationService struct {
	candidates graduationCandidateRepository
	courses    courseCatalog
	audit      auditRecorder
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewGraduationService constructs the graduation service.
func NewGraduationService(candidates graduationCandidateRepository, courses courseCatalog, audit auditWriter, metrics *MetricsService, logger *zap.Logger) *GraduationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraduationService{
		candidates: candidates,
		courses:    courses,
		audit:      auditRecorder{repo: audit, logger: logger},
		metrics:    metrics,
		logger:     logger,
	}
}

// Review evaluates every candidate that has not yet graduated and is not
// withdrawn or rejected.
func (s *GraduationService) Review(ctx context.Context) (*GraduationReview, error) {
	candidates, courses, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	review := &GraduationReview{Eligible: []ReviewEntry{}, Exceptions: []ReviewEntry{}}
	for _, c := range candidates {
		if !reviewable(c) {
			continue
		}
		entry := ReviewEntry{Candidate: c, Evaluation: eligibility.Evaluate(c, courses)}
		if entry.Evaluation.Eligible {
			review.Eligible = append(review.Eligible, entry)
		} else {
			review.Exceptions = append(review.Exceptions, entry)
		}
	}
	return review, nil
}

// Approve graduates an eligible candidate.
func (s *GraduationService) Approve(ctx context.Context, actor Actor, id string) (*models.Candidate, error) {
	candidate, err := s.candidate(ctx, id)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	eval := eligibility.Evaluate(*candidate, courses)
	if !eval.Eligible {
		return nil, appErrors.WithDetails(appErrors.ErrNotEligible, "candidate is not eligible to graduate", eval)
	}

	if err := s.graduate(ctx, candidate); err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionGraduationApprove, "candidate", id, models.AuditDetails{"average": eval.Average})
	s.metrics.RecordGraduations(graduationModeApprove, 1)
	return candidate, nil
}

// ForceApprove graduates a candidate without checking eligibility.
func (s *GraduationService) ForceApprove(ctx context.Context, actor Actor, id string) (*models.Candidate, error) {
	candidate, err := s.candidate(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := candidate.Status
	if err := s.graduate(ctx, candidate); err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionGraduationForceApprove, "candidate", id, models.AuditDetails{"from": previous})
	s.metrics.RecordGraduations(graduationModeForce, 1)
	s.logger.Info("graduation force approved", zap.String("candidate_id", id), zap.String("actor", actor.Label()))
	return candidate, nil
}

// ApproveAll graduates every currently eligible candidate in one batch write.
func (s *GraduationService) ApproveAll(ctx context.Context, actor Actor) (*ApproveAllResult, error) {
	candidates, courses, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]*models.Candidate, 0)
	for i := range candidates {
		c := &candidates[i]
		if !reviewable(*c) || !eligibility.Eligible(*c, courses) {
			continue
		}
		c.Status = models.StatusGraduated
		batch = append(batch, c)
	}

	if len(batch) > 0 {
		if err := s.candidates.UpdateMany(ctx, batch); err != nil {
			return nil, internalError(err, "failed to approve graduations")
		}
	}

	s.audit.record(ctx, actor, models.AuditActionGraduationApproveAll, "candidate", "", models.AuditDetails{"applied": len(batch)})
	s.metrics.RecordGraduations(graduationModeBulk, len(batch))
	return &ApproveAllResult{Applied: len(batch)}, nil
}

func (s *GraduationService) load(ctx context.Context) ([]models.Candidate, []models.Course, error) {
	candidates, err := s.candidates.List(ctx, models.CandidateFilter{})
	if err != nil {
		return nil, nil, internalError(err, "failed to list candidates")
	}
	courses, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, nil, internalError(err, "failed to load courses")
	}
	return candidates, courses, nil
}

func (s *GraduationService) candidate(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "candidate not found", "candidate record conflict", "failed to load candidate")
	}
	if candidate.Status.AtOrPast(models.StatusGraduated) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "candidate has already graduated")
	}
	return candidate, nil
}

func (s *GraduationService) graduate(ctx context.Context, candidate *models.Candidate) error {
	candidate.Status = models.StatusGraduated
	if err := s.candidates.Update(ctx, candidate); err != nil {
		return repoError(err, "candidate not found", "candidate email already exists", "failed to update candidate")
	}
	return nil
}

func reviewable(c models.Candidate) bool {
	switch c.Status {
	case models.StatusWithdrawn, models.StatusRejected:
		return false
	}
	return !c.Status.AtOrPast(models.StatusGraduated)
}
