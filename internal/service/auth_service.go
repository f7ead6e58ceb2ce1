package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides login, self-registration and password flows.
type AuthService struct {
	repo      authUserRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		audit:     auditRecorder{repo: audit, logger: logger},
		validator: ensureValidator(validate),
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	accessToken, issuedAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	actor := Actor{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role, IP: req.IP, UserAgent: req.UserAgent}
	s.audit.record(ctx, actor, models.AuditActionLogin, "auth", user.ID, models.AuditDetails{"status": "success"})

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        userInfo(user),
	}, nil
}

// Register creates a Teacher account with a pending applicant status.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	pending := models.ApplicantPending
	user := &models.User{
		Email:           models.NormalizeEmail(req.Email),
		PasswordHash:    hash,
		Name:            strings.TrimSpace(req.Name),
		Role:            models.RoleTeacher,
		Active:          true,
		Subject:         strings.TrimSpace(req.Subject),
		GPA:             req.GPA,
		Emirate:         strings.TrimSpace(req.Emirate),
		Mobile:          compactPhone(strings.TrimSpace(req.Mobile)),
		NationalID:      strings.TrimSpace(req.NationalID),
		ApplicantStatus: &pending,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, repoError(err, "", "email already registered", "failed to register user")
	}

	s.audit.record(ctx, Actor{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, models.AuditActionRegister, "user", user.ID, nil)
	s.logger.Info("applicant registered", zap.String("user_id", user.ID))
	return user, nil
}

// ChangePassword sets a new password for the user with email. Users changing
// their own password must confirm the old one; admins may reset anyone.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, email string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid change password payload")
	}

	self := strings.EqualFold(strings.TrimSpace(email), actor.Email)
	if !self && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot change another user's password")
	}

	user, err := s.repo.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return repoError(err, "user not found", "", "failed to load user")
	}

	if self {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
		}
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return repoError(err, "user not found", "", "failed to update password")
	}

	s.audit.record(ctx, actor, models.AuditActionPasswordChange, "user", user.ID, models.AuditDetails{"email": user.Email})
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// EnsureAdmin seeds an admin account when the user store is empty. It is a
// no-op when either credential is blank or any user already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return internalError(err, "failed to count users")
	}
	if count > 0 {
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return repoError(err, "", "admin already exists", "failed to seed admin")
	}
	s.logger.Info("seeded admin account", zap.String("email", admin.Email))
	return nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", internalError(err, "failed to hash password")
	}
	return string(hash), nil
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}
