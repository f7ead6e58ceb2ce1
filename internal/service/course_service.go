package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type courseRepository interface {
	courseCatalog
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, code string) error
}

// CourseRequest is the create/update payload for a course. Code is ignored on update.
type CourseRequest struct {
	Code          string   `json:"code" validate:"required,max=32"`
	Title         string   `json:"title" validate:"required"`
	Brief         string   `json:"brief"`
	Weight        float64  `json:"weight" validate:"gte=0"`
	PassThreshold int      `json:"passThreshold" validate:"gte=0,lte=100"`
	IsRequired    bool     `json:"isRequired"`
	Tracks        []string `json:"tracks" validate:"dive,oneof=t1 t2 t3"`
	Active        *bool    `json:"active"`
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: ensureValidator(validate), logger: logger}
}

// List returns the catalog; inactive courses only when asked.
func (s *CourseService) List(ctx context.Context, includeInactive bool) ([]models.Course, error) {
	courses, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by code.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, repoError(err, "course not found", "", "failed to load course")
	}
	return course, nil
}

// Create adds a course, applying the default weight and threshold.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course := &models.Course{Code: strings.ToUpper(strings.TrimSpace(req.Code)), Active: true}
	applyCourseRequest(course, req)

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, repoError(err, "", "course code already exists", "failed to create course")
	}
	s.logger.Info("course created", zap.String("code", course.Code))
	return course, nil
}

// Update edits a course. The code cannot change.
func (s *CourseService) Update(ctx context.Context, code string, req CourseRequest) (*models.Course, error) {
	if strings.TrimSpace(req.Code) == "" {
		req.Code = code
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !models.SameCode(req.Code, course.Code) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is immutable")
	}
	applyCourseRequest(course, req)

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, repoError(err, "course not found", "", "failed to update course")
	}
	return course, nil
}

// Delete deactivates a course. Historical results keep referencing it.
func (s *CourseService) Delete(ctx context.Context, code string) error {
	if err := s.repo.Deactivate(ctx, strings.TrimSpace(code)); err != nil {
		return repoError(err, "course not found", "", "failed to delete course")
	}
	s.logger.Info("course deactivated", zap.String("code", code))
	return nil
}

func applyCourseRequest(course *models.Course, req CourseRequest) {
	course.Title = strings.TrimSpace(req.Title)
	course.Brief = strings.TrimSpace(req.Brief)
	course.Weight = req.Weight
	if course.Weight <= 0 {
		course.Weight = models.DefaultCourseWeight
	}
	course.PassThreshold = req.PassThreshold
	if course.PassThreshold <= 0 {
		course.PassThreshold = int(models.DefaultPassThreshold)
	}
	course.IsRequired = req.IsRequired
	tracks := make([]string, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		tracks = append(tracks, strings.TrimSpace(t))
	}
	course.Tracks = tracks
	if req.Active != nil {
		course.Active = *req.Active
	}
}
