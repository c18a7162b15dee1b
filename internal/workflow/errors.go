package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/face-engine/internal/database"
)

var (
	// ErrDuplicateEmail is returned when the registration email is already taken
	ErrDuplicateEmail = database.ErrDuplicateEmail

	// ErrNotFound is returned for unknown user and camera ids
	ErrNotFound = database.ErrNotFound

	// ErrNoFaceFound is the expected empty result of an image without faces
	ErrNoFaceFound = errors.New("no face found in the image")

	// ErrStorage wraps file write failures
	ErrStorage = errors.New("failed to store file")

	// ErrEncoding wraps failures of the face encoder
	ErrEncoding = errors.New("failed to encode face")
)

// FieldError is one field level violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed request input
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func encodingError(err error) error {
	return fmt.Errorf("%w: %w", ErrEncoding, err)
}
