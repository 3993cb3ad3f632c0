package domain

import (
	"strconv"
	"strings"
	"time"
)

// User models a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          *float64
	Tokens       []string
	Avatar       []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasToken reports whether token is one of the user's live sessions.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// UserChanges is the set of profile fields an update writes. Nil fields are left untouched.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Age          *float64
	ClearAge     bool
}

// Empty reports whether the change set touches nothing.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil && c.Age == nil && !c.ClearAge
}

// NormalizeEmail trims and lowercases an address, then checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", NewValidationError("Email is required.")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", NewValidationError("Email is invalid.")
	}
	return email, nil
}

// NormalizeName trims a display name and rejects empty values.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("Name is required.")
	}
	return name, nil
}

// ValidatePassword returns the trimmed secret or a validation error.
// A secret shorter than MinPasswordLength or containing the word "password" is rejected.
func ValidatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if err := validate.Var(password, "required,min="+strconv.Itoa(MinPasswordLength)); err != nil {
		return "", NewValidationError("The password must be at least 6 characters long.")
	}
	if err := validate.Var(password, "nopassword"); err != nil {
		return "", NewValidationError("The password must be unique!")
	}
	return password, nil
}

// ValidateAge rejects negative ages.
func ValidateAge(age float64) error {
	if age < 0 {
		return NewValidationError("Age must be a positive number.")
	}
	return nil
}
