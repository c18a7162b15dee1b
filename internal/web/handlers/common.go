package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/kozaktomas/face-engine/internal/encoder"
	"github.com/kozaktomas/face-engine/internal/logger"
	"github.com/kozaktomas/face-engine/internal/workerpool"
	"github.com/kozaktomas/face-engine/internal/workflow"
	"go.uber.org/zap"
)

const (
	errInvalidRequestBody = "invalid request body"
	msgValidationError    = "Validation Error"
	msgBadRequest         = "Bad Request"
)

// Envelope is the body of every JSON response. Status mirrors the HTTP status.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends an enveloped JSON response.
func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Status: status, Message: message, Data: data})
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, message, map[string]string{"error": message})
}

// respondValidation sends field level errors. JSON bodies get 422, form input 400.
func respondValidation(w http.ResponseWriter, status int, ve *workflow.ValidationError) {
	respondJSON(w, status, msgValidationError, map[string]any{"errors": ve.Fields})
}

// respondFailure maps a workflow or store error onto the envelope.
func respondFailure(w http.ResponseWriter, r *http.Request, err error, formInput bool) {
	var ve *workflow.ValidationError
	if errors.As(err, &ve) {
		status := http.StatusUnprocessableEntity
		if formInput {
			status = http.StatusBadRequest
		}
		respondValidation(w, status, ve)
		return
	}

	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", zap.Error(err))
	}
	respondError(w, status, errorMessage(err))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrDuplicateEmail),
		errors.Is(err, workflow.ErrNoFaceFound),
		errors.Is(err, encoder.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workerpool.ErrQueueFull),
		errors.Is(err, workerpool.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, workflow.ErrDuplicateEmail):
		return "Email already exists"
	case errors.Is(err, workflow.ErrNoFaceFound):
		return "No face found in the image"
	case errors.Is(err, workflow.ErrNotFound):
		return "Not found"
	case errors.Is(err, workerpool.ErrQueueFull):
		return "Server is busy, try again later"
	}
	return err.Error()
}

var validate = newValidator()

// newValidator reports fields by their json or form name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Tag.Get("form")
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of v and converts violations to a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	ve := &workflow.ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, workflow.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "max":
		return "ensure this value has at most " + fe.Param() + " characters"
	case "min":
		return "ensure this value has at least " + fe.Param() + " characters"
	}
	return "invalid value"
}

// decodeJSON decodes the request body into dst. Syntax and type errors become a ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return workflow.NewValidationError(typeErr.Field, "value has the wrong type, expected "+typeErr.Type.String())
		}
		return workflow.NewValidationError("body", errInvalidRequestBody)
	}
	return nil
}

// idParam parses a positive integer path parameter. Anything else is reported as not found.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s %q", workflow.ErrNotFound, name, sanitizeForLog(raw))
	}
	return id, nil
}
