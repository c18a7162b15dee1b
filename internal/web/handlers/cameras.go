package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/face-engine/internal/database"
)

// CamerasHandler is plain CRUD over cameras
type CamerasHandler struct {
	cameras database.CameraStore
}

// NewCamerasHandler creates a new cameras handler
func NewCamerasHandler(cameras database.CameraStore) *CamerasHandler {
	return &CamerasHandler{cameras: cameras}
}

// CameraResponse represents a camera in API responses
type CameraResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IPAddress string    `json:"ip_address"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCameraResponse(c *database.Camera) CameraResponse {
	return CameraResponse{
		ID:        c.ID,
		Name:      c.Name,
		IPAddress: c.IPAddress,
		Location:  c.Location,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type createCameraRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	IPAddress string `json:"ip_address" validate:"required,max=50"`
	Location  string `json:"location" validate:"max=100"`
}

type updateCameraRequest struct {
	Name      *string `json:"name" validate:"omitnil,min=1,max=50"`
	IPAddress *string `json:"ip_address" validate:"omitnil,min=1,max=50"`
	Location  *string `json:"location" validate:"omitnil,max=100"`
}

// List returns all cameras
func (h *CamerasHandler) List(w http.ResponseWriter, r *http.Request) {
	cameras, err := h.cameras.List(r.Context())
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	result := make([]CameraResponse, 0, len(cameras))
	for i := range cameras {
		result = append(result, toCameraResponse(&cameras[i]))
	}
	respondJSON(w, http.StatusOK, "Cameras retrieved successfully", result)
}

// Get returns a single camera
func (h *CamerasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	camera, err := h.cameras.Get(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	respondJSON(w, http.StatusOK, "Camera retrieved successfully", toCameraResponse(camera))
}

// Create adds a camera
func (h *CamerasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCameraRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, r, err, false)
		return
	}
	if err := validateStruct(req); err != nil {
		respondFailure(w, r, err, false)
		return
	}

	camera := &database.Camera{
		Name:      req.Name,
		IPAddress: req.IPAddress,
		Location:  req.Location,
	}
	if err := h.cameras.Create(r.Context(), camera); err != nil {
		respondFailure(w, r, err, false)
		return
	}
	respondJSON(w, http.StatusCreated, "Camera created successfully", toCameraResponse(camera))
}

// Update applies a partial update
func (h *CamerasHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	var req updateCameraRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, r, err, false)
		return
	}
	if err := validateStruct(req); err != nil {
		respondFailure(w, r, err, false)
		return
	}

	update := database.CameraUpdate{Name: req.Name, IPAddress: req.IPAddress, Location: req.Location}
	var camera *database.Camera
	if update.Empty() {
		camera, err = h.cameras.Get(r.Context(), id)
	} else {
		camera, err = h.cameras.Update(r.Context(), id, update)
	}
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	respondJSON(w, http.StatusOK, "Camera updated successfully", toCameraResponse(camera))
}

// Delete removes a camera
func (h *CamerasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}
	if err := h.cameras.Delete(r.Context(), id); err != nil {
		respondFailure(w, r, err, false)
		return
	}
	respondJSON(w, http.StatusOK, "Camera deleted successfully", map[string]int64{"id": id})
}
