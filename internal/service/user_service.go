package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,user_role"`
	Active   *bool  `json:"active"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateUserRequest payload for updating users.
type UpdateUserRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Name   string `json:"name" validate:"required"`
	Role   string `json:"role" validate:"required,user_role"`
	Active *bool  `json:"active"`
}

// UserService handles admin user management.
type UserService struct {
	repo      userRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:      repo,
		audit:     auditRecorder{repo: audit, logger: logger},
		validator: ensureValidator(validate),
		logger:    logger,
	}
}

// List returns users, optionally filtered by role or search text.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list users")
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "user not found", "", "failed to load user")
	}
	return user, nil
}

// Create adds a user with any role.
func (s *UserService) Create(ctx context.Context, actor Actor, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}
	role, _ := models.ParseUserRole(req.Role)

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Active:       true,
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if role == models.RoleTeacher {
		pending := models.ApplicantPending
		user.ApplicantStatus = &pending
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, repoError(err, "", "email already exists", "failed to create user")
	}

	s.audit.record(ctx, actor, models.AuditActionUserCreate, "user", user.ID, models.AuditDetails{"email": user.Email, "role": user.Role})
	return user, nil
}

// Update modifies profile, role and active flag of a user.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update user payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previousRole := user.Role
	user.Name = strings.TrimSpace(req.Name)
	user.Role, _ = models.ParseUserRole(req.Role)
	if req.Email != "" {
		user.Email = models.NormalizeEmail(req.Email)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, repoError(err, "user not found", "email already exists", "failed to update user")
	}

	s.audit.record(ctx, actor, models.AuditActionUserUpdate, "user", user.ID, models.AuditDetails{"fromRole": previousRole, "toRole": user.Role, "active": user.Active})
	return user, nil
}

// Delete removes a user permanently. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "user not found", "", "failed to delete user")
	}
	s.audit.record(ctx, actor, models.AuditActionUserDelete, "user", id, models.AuditDetails{"email": user.Email})
	return nil
}
