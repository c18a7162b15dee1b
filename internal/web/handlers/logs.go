package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-engine/internal/constants"
	"github.com/kozaktomas/face-engine/internal/database"
)

// LogsHandler lists recognition attempts
type LogsHandler struct {
	logs database.RecognitionLogStore
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logs database.RecognitionLogStore) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// RecognizedUser is the name of the user a log entry resolved to
type RecognizedUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LogResponse represents a recognition log entry
type LogResponse struct {
	ID             int64           `json:"id"`
	Timestamp      string          `json:"timestamp"`
	RecognizedUser *RecognizedUser `json:"recognized_user"`
	ImagePath      string          `json:"image_path"`
	ImageURL       string          `json:"image_url"`
}

// List returns all recognition logs, newest first
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.List(r.Context())
	if err != nil {
		respondFailure(w, r, err, false)
		return
	}

	result := make([]LogResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		item := LogResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(constants.LogTimestampFormat),
			ImagePath: e.SnapshotFilename,
			ImageURL:  "/uploads/face-capture/" + e.SnapshotFilename,
		}
		if e.Recognized() {
			item.RecognizedUser = &RecognizedUser{FirstName: e.FirstName, LastName: e.LastName}
		}
		result = append(result, item)
	}
	respondJSON(w, http.StatusOK, "Recognition logs retrieved successfully", map[string]any{"logs_list": result})
}
