package domain

import (
	"fmt"
	"strings"
)

// FieldError is a single field/message pair reported back to the caller.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule a request broke. Nothing is persisted
// when one is returned.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			msgs = append(msgs, f.Message)
			continue
		}
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError reports an unresolved identifier.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is lets errors.Is match against the resource-specific sentinels.
func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrMovieNotFound:
		return e.Resource == ResourceMovie
	case ErrCategoryNotFound:
		return e.Resource == ResourceCategory
	case ErrUserNotFound:
		return e.Resource == ResourceUser
	}
	return false
}

const (
	ResourceMovie    = "movie"
	ResourceCategory = "category"
	ResourceUser     = "user"
)
