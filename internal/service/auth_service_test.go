package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthServiceForTest(t *testing.T, users ...models.User) (*AuthService, *fakeUserRepo, *fakeAuditRepo) {
	repo := newFakeUserRepo(users...)
	audit := &fakeAuditRepo{}
	svc := NewAuthService(repo, audit, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "trainee-tracker",
	})
	return svc, repo, audit
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo, audit := newAuthServiceForTest(t, models.User{
		ID:           "u-1",
		Email:        "admin@example.com",
		PasswordHash: mustHash(t, "password123"),
		Name:         "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "Admin@Example.com", Password: "password123", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.NotNil(t, repo.items["u-1"].LastLogin)
	assert.Equal(t, []string{models.AuditActionLogin}, audit.actions())

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Admin", claims.Name)
	assert.Equal(t, "trainee-tracker", claims.Issuer)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(t,
		models.User{ID: "u-1", Email: "a@example.com", PasswordHash: mustHash(t, "password123"), Role: models.RoleStaff, Active: true},
		models.User{ID: "u-2", Email: "off@example.com", PasswordHash: mustHash(t, "password123"), Role: models.RoleStaff, Active: false},
	)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "off@example.com", Password: "password123"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "", Password: ""})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(t)
	other := NewAuthService(newFakeUserRepo(), nil, nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "trainee-tracker"})

	token, _, err := other.generateAccessToken(&models.User{ID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRegister(t *testing.T) {
	svc, repo, audit := newAuthServiceForTest(t)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Teacher@Example.com",
		Password: "secret1",
		Name:     "Mariam",
		Subject:  "English",
		Emirate:  "Dubai",
		Mobile:   "+971 50 123 4567",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	require.NotNil(t, user.ApplicantStatus)
	assert.Equal(t, models.ApplicantPending, *user.ApplicantStatus)
	assert.Equal(t, "teacher@example.com", repo.items[user.ID].Email)
	assert.Equal(t, []string{models.AuditActionRegister}, audit.actions())

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email: "teacher@example.com", Password: "secret1", Name: "X", Subject: "Math", Emirate: "Dubai", Mobile: "0501234567",
	})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email: "new@example.com", Password: "secret1", Name: "X", Subject: "Math", Emirate: "Dubai", Mobile: "0401234567",
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, repo, _ := newAuthServiceForTest(t,
		models.User{ID: "u-1", Email: "staff@example.com", PasswordHash: mustHash(t, "oldpass"), Role: models.RoleStaff, Active: true},
		models.User{ID: "u-2", Email: "admin@example.com", PasswordHash: mustHash(t, "adminpass"), Role: models.RoleAdmin, Active: true},
	)
	self := Actor{UserID: "u-1", Email: "staff@example.com", Role: models.RoleStaff}
	admin := Actor{UserID: "u-2", Email: "admin@example.com", Role: models.RoleAdmin}

	err := svc.ChangePassword(context.Background(), self, "staff@example.com", models.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.ChangePassword(context.Background(), self, "staff@example.com", models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpass"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.items["u-1"].PasswordHash), []byte("newpass")))

	err = svc.ChangePassword(context.Background(), self, "admin@example.com", models.ChangePasswordRequest{NewPassword: "hijack1"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.ChangePassword(context.Background(), admin, "staff@example.com", models.ChangePasswordRequest{NewPassword: "reset123"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.items["u-1"].PasswordHash), []byte("reset123")))

	err = svc.ChangePassword(context.Background(), admin, "ghost@example.com", models.ChangePasswordRequest{NewPassword: "reset123"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAuthServiceEnsureAdmin(t *testing.T) {
	svc, repo, _ := newAuthServiceForTest(t)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	assert.Empty(t, repo.items)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "Root@Example.com", "rootpass"))
	require.Len(t, repo.items, 1)
	for _, u := range repo.items {
		assert.Equal(t, "root@example.com", u.Email)
		assert.Equal(t, models.RoleAdmin, u.Role)
	}

	require.NoError(t, svc.EnsureAdmin(context.Background(), "second@example.com", "rootpass"))
	assert.Len(t, repo.items, 1)
}
