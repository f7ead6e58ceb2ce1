package service

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

var uaeMobilePattern = regexp.MustCompile(`^(?:\+971|00971|0)?5[0-9]{8}$`)

// NewValidator returns a validator with the domain tags registered:
// uae_mobile, candidate_status, enrollment_status and user_role.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidators(v)
	return v
}

func registerValidators(v *validator.Validate) {
	_ = v.RegisterValidation("uae_mobile", func(fl validator.FieldLevel) bool {
		return ValidUAEMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("candidate_status", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCandidateStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		_, err := models.ParseEnrollmentStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseUserRole(fl.Field().String())
		return err == nil
	})
}

// ensureValidator returns validate with domain tags, creating one when nil.
func ensureValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return NewValidator()
	}
	registerValidators(validate)
	return validate
}

// ValidUAEMobile reports whether s is a UAE mobile number, with or without
// country prefix. Spaces and dashes are ignored.
func ValidUAEMobile(s string) bool {
	return uaeMobilePattern.MatchString(compactPhone(s))
}

func compactPhone(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '-' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// repoError maps repository sentinels onto HTTP aware errors. Empty messages
// fall back to a generic wording for that outcome.
func repoError(err error, notFound, conflict, internal string) error {
	if notFound == "" {
		notFound = "record not found"
	}
	if conflict == "" {
		conflict = "record already exists"
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	default:
		return internalError(err, internal)
	}
}
