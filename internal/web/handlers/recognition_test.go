package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-engine/internal/workerpool"
	"github.com/kozaktomas/face-engine/internal/workflow"
)

func TestRecognitionHandler_RoundTrip(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.encodings["jan-face"] = encodingOf(0.1)
	users := NewUsersHandler(env.store.Users, env.registrar, "api")
	handler := NewRecognitionHandler(env.recognizer)

	recorder := httptest.NewRecorder()
	users.Create(recorder, multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "jan.jpg", []byte("jan-face")))
	assertStatusCode(t, recorder, http.StatusCreated)

	recorder = httptest.NewRecorder()
	handler.Receive(recorder, multipartRequest(t, "/api/receive", nil, "faceImage", "frame.jpg", []byte("jan-face")))

	assertStatusCode(t, recorder, http.StatusOK)
	var data RecognitionResponse
	parseData(t, recorder, &data)
	if data.Message != "Face recognized" {
		t.Errorf("expected 'Face recognized', got %q", data.Message)
	}
	if data.User == nil || *data.User != "Jan Novak" {
		t.Errorf("expected user 'Jan Novak', got %v", data.User)
	}
	if data.Snapshot == "" || data.LogID == 0 {
		t.Errorf("expected snapshot and log id, got %+v", data)
	}
}

func TestRecognitionHandler_NotRecognized(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.encodings["stranger"] = encodingOf(0.8)
	handler := NewRecognitionHandler(env.recognizer)

	req := requestWithChiParams(
		multipartRequest(t, "/api/cameras/3/recognize", nil, "faceImage", "frame.jpg", []byte("stranger")),
		map[string]string{"camera_id": "3"},
	)
	recorder := httptest.NewRecorder()
	handler.RecognizeCamera(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var data RecognitionResponse
	parseData(t, recorder, &data)
	if data.Message != "Face not recognized" || data.User != nil {
		t.Errorf("unexpected response %+v", data)
	}
	if env.store.Logs.Count() != 1 {
		t.Errorf("expected 1 log entry, got %d", env.store.Logs.Count())
	}
}

func TestRecognitionHandler_RecognizeCamera_InvalidID(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.encodings["stranger"] = encodingOf(0.8)
	handler := NewRecognitionHandler(env.recognizer)

	for _, id := range []string{"abc", "0", "-4", "3.5"} {
		t.Run(id, func(t *testing.T) {
			req := requestWithChiParams(
				multipartRequest(t, "/api/cameras/"+id+"/recognize", nil, "faceImage", "frame.jpg", []byte("stranger")),
				map[string]string{"camera_id": id},
			)
			recorder := httptest.NewRecorder()
			handler.RecognizeCamera(recorder, req)

			assertStatusCode(t, recorder, http.StatusNotFound)
			assertJSONError(t, recorder, "Not found")
		})
	}
	if env.store.Logs.Count() != 0 {
		t.Errorf("expected no log entry, got %d", env.store.Logs.Count())
	}
}

func TestRecognitionHandler_NoFace(t *testing.T) {
	env := newWorkflowEnv(t)
	handler := NewRecognitionHandler(env.recognizer)

	recorder := httptest.NewRecorder()
	handler.Receive(recorder, multipartRequest(t, "/api/receive", nil, "faceImage", "frame.jpg", []byte("empty room")))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "No face found in the image")
	if env.store.Logs.Count() != 0 {
		t.Errorf("expected no log entry, got %d", env.store.Logs.Count())
	}
}

func TestRecognitionHandler_MissingImage(t *testing.T) {
	env := newWorkflowEnv(t)
	handler := NewRecognitionHandler(env.recognizer)

	recorder := httptest.NewRecorder()
	handler.Receive(recorder, multipartRequest(t, "/api/receive", map[string]string{"note": "x"}, "", "", nil))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertFieldError(t, recorder, "faceImage")
}

// stubRecognizer returns a fixed error
type stubRecognizer struct {
	err error
}

func (s stubRecognizer) Recognize(ctx context.Context, image []byte, cameraID string) (*workflow.Recognition, error) {
	return nil, s.err
}

func TestRecognitionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"queue full", workerpool.ErrQueueFull, http.StatusServiceUnavailable},
		{"pool closed", workerpool.ErrClosed, http.StatusServiceUnavailable},
		{"storage", errors.Join(workflow.ErrStorage, errors.New("disk full")), http.StatusInternalServerError},
		{"encoding", errors.Join(workflow.ErrEncoding, errors.New("timeout")), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRecognitionHandler(stubRecognizer{err: tt.err})
			recorder := httptest.NewRecorder()
			handler.Receive(recorder, multipartRequest(t, "/api/receive", nil, "faceImage", "frame.jpg", []byte("frame")))
			assertStatusCode(t, recorder, tt.status)
		})
	}
}
