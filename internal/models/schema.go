package models

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/apperrors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// UserSchema is the payload accepted when creating a user.
type UserSchema struct {
	Username string `json:"username" validate:"required,min=3,max=64,username" example:"ada_l"`
	Email    string `json:"email" validate:"required,email,max=254" example:"ada@example.com"`
	FullName string `json:"full_name,omitempty" validate:"max=128" example:"Ada Lovelace"`
}

// Normalize trims surrounding whitespace from every field.
func (s *UserSchema) Normalize() {
	s.Username = strings.TrimSpace(s.Username)
	s.Email = strings.TrimSpace(s.Email)
	s.FullName = strings.TrimSpace(s.FullName)
}

// Validate returns an apperrors validation error whose details are keyed by
// JSON field name.
func (s UserSchema) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid user payload", nil)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.Validation("invalid user payload", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "username":
		return "may only contain letters, digits, '_', '-' and '.'"
	default:
		return "is invalid"
	}
}
