package http

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/weddinginvite/core/internal/domain/entities"
)

const msgMissingFields = "Missing required fields"

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validationMessage turns a validation failure into the message shown to
// the guest page. Any missing field wins over other failures.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgMissingFields
		}
	}
	for _, fe := range verrs {
		if fe.Field() == "AttendeeCount" {
			return entities.ErrInvalidAttendeeCount.Error()
		}
	}
	return verrs.Error()
}
