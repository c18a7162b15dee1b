package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-engine/internal/constants"
	"github.com/kozaktomas/face-engine/internal/workflow"
)

// Recognizer runs one recognition attempt
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, cameraID string) (*workflow.Recognition, error)
}

// RecognitionHandler accepts frames from ad-hoc uploads and cameras
type RecognitionHandler struct {
	recognizer Recognizer
}

// NewRecognitionHandler creates a new recognition handler
func NewRecognitionHandler(recognizer Recognizer) *RecognitionHandler {
	return &RecognitionHandler{recognizer: recognizer}
}

// RecognitionResponse is the data of a completed recognition
type RecognitionResponse struct {
	Message  string  `json:"message"`
	User     *string `json:"user"`
	UserID   *int64  `json:"user_id,omitempty"`
	Snapshot string  `json:"snapshot"`
	LogID    int64   `json:"log_id"`
}

// Receive runs recognition on an upload without camera context
func (h *RecognitionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.recognize(w, r, "")
}

// RecognizeCamera runs recognition on a frame from the camera in the path
func (h *RecognitionHandler) RecognizeCamera(w http.ResponseWriter, r *http.Request) {
	if _, err := idParam(r, "camera_id"); err != nil {
		respondFailure(w, r, err, true)
		return
	}
	h.recognize(w, r, chi.URLParam(r, "camera_id"))
}

func (h *RecognitionHandler) recognize(w http.ResponseWriter, r *http.Request, cameraID string) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "No face image provided")
		return
	}
	image, _, err := readFormFile(r, constants.FaceImageFormField)
	if err != nil {
		respondFailure(w, r, err, true)
		return
	}

	result, err := h.recognizer.Recognize(r.Context(), image, cameraID)
	if err != nil {
		respondFailure(w, r, err, true)
		return
	}

	resp := RecognitionResponse{
		Message:  "Face not recognized",
		Snapshot: result.SnapshotFilename,
		LogID:    result.LogID,
	}
	if result.Recognized() {
		name := result.User.FullName()
		resp.Message = "Face recognized"
		resp.User = &name
		resp.UserID = &result.User.ID
	}
	respondJSON(w, http.StatusOK, "Face recognition completed", resp)
}
