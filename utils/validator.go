package utils

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// ValidateStruct checks the `validate` tags of obj.
func ValidateStruct(obj interface{}) error {
	if err := validate.Struct(obj); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
