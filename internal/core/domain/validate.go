package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest secret accepted at validation time.
const MinPasswordLength = 6

var validate = NewValidate()

// NewValidate returns a validator with the project's custom tags registered:
//   - nopassword: the string must not contain "password" in any casing.
func NewValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
	})
	return v
}
