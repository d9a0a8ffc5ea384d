package core

import (
	"fmt"
	"strings"
)

// Normalize trims the text fields before validation.
func (t Task) Normalize() Task {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	return t
}

// WithDefaults fills in what a new task gets when the caller left it out.
// Stores apply it on insert only; an update keeps what it was given.
func (t Task) WithDefaults() Task {
	if t.Status == "" {
		t.Status = StatusPending
	}
	return t
}

// Validate checks the stored shape of a task. Stores call it before every write.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewPayloadError("title", "title is required")
	}
	if !t.Status.Valid() {
		return NewPayloadError("status", fmt.Sprintf("status %q is not one of pending, in-progress, done", t.Status))
	}
	if t.CreatedBy == "" {
		return NewPayloadError("createdBy", "createdBy is required")
	}
	return nil
}
