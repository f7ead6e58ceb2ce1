package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

type mentorRepository interface {
	List(ctx context.Context) ([]models.Mentor, error)
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	Create(ctx context.Context, mentor *models.Mentor) error
	Update(ctx context.Context, mentor *models.Mentor) error
	Delete(ctx context.Context, id string) error
}

// MentorRequest is the create/update payload for a mentor.
type MentorRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,uae_mobile"`
	Subject string `json:"subject"`
	Emirate string `json:"emirate"`
	Active  *bool  `json:"active"`
}

// MentorService manages mentors.
type MentorService struct {
	repo      mentorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMentorService constructs the mentor service.
func NewMentorService(repo mentorRepository, validate *validator.Validate, logger *zap.Logger) *MentorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{repo: repo, validator: ensureValidator(validate), logger: logger}
}

func (s *MentorService) List(ctx context.Context) ([]models.Mentor, error) {
	mentors, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list mentors")
	}
	return mentors, nil
}

func (s *MentorService) Get(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "mentor not found", "", "failed to load mentor")
	}
	return mentor, nil
}

func (s *MentorService) Create(ctx context.Context, req MentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid mentor payload")
	}
	mentor := &models.Mentor{Active: true}
	applyMentorRequest(mentor, req)
	if err := s.repo.Create(ctx, mentor); err != nil {
		return nil, repoError(err, "", "mentor email already exists", "failed to create mentor")
	}
	return mentor, nil
}

func (s *MentorService) Update(ctx context.Context, id string, req MentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid mentor payload")
	}
	mentor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMentorRequest(mentor, req)
	if err := s.repo.Update(ctx, mentor); err != nil {
		return nil, repoError(err, "mentor not found", "mentor email already exists", "failed to update mentor")
	}
	return mentor, nil
}

func (s *MentorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "mentor not found", "", "failed to delete mentor")
	}
	return nil
}

func applyMentorRequest(mentor *models.Mentor, req MentorRequest) {
	mentor.Name = strings.TrimSpace(req.Name)
	mentor.Email = models.NormalizeEmail(req.Email)
	mentor.Phone = compactPhone(strings.TrimSpace(req.Phone))
	mentor.Subject = strings.TrimSpace(req.Subject)
	mentor.Emirate = strings.TrimSpace(req.Emirate)
	if req.Active != nil {
		mentor.Active = *req.Active
	}
}
