package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// fileSuffixPattern matches suffixes such as ".recipe" or ".recipe.yaml".
var fileSuffixPattern = regexp.MustCompile(`^(\.[A-Za-z0-9_-]+)+$`)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("file_suffix", validateFileSuffix)
}

func validateFileSuffix(fl validator.FieldLevel) bool {
	return fileSuffixPattern.MatchString(fl.Field().String())
}
