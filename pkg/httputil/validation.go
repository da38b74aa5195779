package httputil

import (
	"github.com/go-playground/validator/v10"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/errors"
)

var validate = validator.New()

// Validate validates a struct using go-playground/validator
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		details := make(map[string]string)

		for _, e := range validationErrors {
			details[e.Field()] = formatValidationError(e)
		}

		return errors.Validation(details)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must contain at least " + e.Param() + " items"
	case "max":
		return "must contain at most " + e.Param() + " items"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "invalid value"
	}
}
