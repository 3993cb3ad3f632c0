package domain

import (
	"strings"
	"time"
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string
	Description string
	Completed   bool
	Owner       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskChanges is the set of task fields an update writes.
type TaskChanges struct {
	Description *string
	Completed   *bool
}

// Empty reports whether the change set touches nothing.
func (c TaskChanges) Empty() bool {
	return c.Description == nil && c.Completed == nil
}

// NormalizeDescription trims a description and rejects empty values.
func NormalizeDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", NewValidationError("Description field cannot be empty.")
	}
	return description, nil
}
