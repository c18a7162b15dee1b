package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/kozaktomas/face-engine/internal/constants"
	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/logger"
	"github.com/kozaktomas/face-engine/internal/workflow"
	"go.uber.org/zap"
)

// Registrar registers a user with its portrait
type Registrar interface {
	Register(ctx context.Context, req workflow.RegistrationRequest) (*database.User, error)
}

// UsersHandler handles user listing and registration
type UsersHandler struct {
	users     database.UserReader
	registrar Registrar
	createdBy string
}

// NewUsersHandler creates a new users handler. createdBy is recorded on new users.
func NewUsersHandler(users database.UserReader, registrar Registrar, createdBy string) *UsersHandler {
	return &UsersHandler{
		users:     users,
		registrar: registrar,
		createdBy: createdBy,
	}
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	PortraitPath string    `json:"portrait_path"`
	PortraitURL  string    `json:"portrait_url"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserResponse(u *database.User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PortraitPath: u.PortraitPath,
		IsSuperuser:  u.IsSuperuser,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Phone != "" {
		resp.Phone = &u.Phone
	}
	if u.PortraitPath != "" {
		resp.PortraitURL = "/uploads/portraits/" + path.Base(u.PortraitPath)
	}
	return resp
}

type createUserRequest struct {
	FirstName string `form:"first_name" validate:"required,max=50"`
	LastName  string `form:"last_name" validate:"required,max=50"`
	Email     string `form:"email" validate:"required,email,max=100"`
	Phone     string `form:"phone" validate:"omitempty,max=15"`
}

// List returns all users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}

	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, "Users retrieved successfully", map[string]any{"users": result})
}

// Get returns a single user
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	respondJSON(w, http.StatusOK, "User retrieved successfully", map[string]any{"user": toUserResponse(user)})
}

// Create registers a user from a multipart form with a portrait file part
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	req := createUserRequest{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Phone:     r.FormValue("phone"),
	}
	if err := validateStruct(req); err != nil {
		respondFailure(w, r, err, true)
		return
	}

	portrait, filename, err := readFormFile(r, constants.PortraitFormField)
	if err != nil {
		respondFailure(w, r, err, true)
		return
	}

	user, err := h.registrar.Register(r.Context(), workflow.RegistrationRequest{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		PortraitFilename: filename,
		Portrait:         portrait,
		CreatedBy:        h.createdBy,
	})
	if err != nil {
		respondFailure(w, r, err, true)
		return
	}

	logger.FromContext(r.Context()).Info("User created",
		zap.Int64("user_id", user.ID), zap.String("filename", sanitizeForLog(filename)))
	respondJSON(w, http.StatusCreated, "User created successfully", map[string]any{"user": toUserResponse(user)})
}

// readFormFile reads a required, non-empty file part of a parsed multipart form.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", workflow.NewValidationError(field, "file is missing")
	}
	if err != nil {
		return nil, "", workflow.NewValidationError(field, "file could not be read")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", workflow.NewValidationError(field, "file could not be read")
	}
	if len(data) == 0 {
		return nil, "", workflow.NewValidationError(field, "file is empty")
	}
	return data, header.Filename, nil
}
