package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/database/mock"
)

func TestCamerasHandler_Create(t *testing.T) {
	store := mock.NewStore()
	handler := NewCamerasHandler(store.Cameras)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/cameras", `{"name": "Gate", "ip_address": "10.0.0.20", "location": "North"}`))

	assertStatusCode(t, recorder, http.StatusCreated)
	var camera CameraResponse
	env := parseData(t, recorder, &camera)
	if env.Message != "Camera created successfully" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if camera.ID == 0 || camera.Name != "Gate" || camera.Location != "North" {
		t.Errorf("unexpected camera %+v", camera)
	}
}

func TestCamerasHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"ip_address": "10.0.0.20"}`, "name"},
		{"missing ip", `{"name": "Gate"}`, "ip_address"},
		{"name too long", `{"name": "` + strings.Repeat("x", 51) + `", "ip_address": "10.0.0.20"}`, "name"},
		{"location too long", `{"name": "Gate", "ip_address": "10.0.0.20", "location": "` + strings.Repeat("x", 101) + `"}`, "location"},
		{"wrong type", `{"name": 12, "ip_address": "10.0.0.20"}`, "name"},
		{"invalid json", `not json`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			handler := NewCamerasHandler(store.Cameras)

			recorder := httptest.NewRecorder()
			handler.Create(recorder, jsonRequest(http.MethodPost, "/cameras", tt.body))

			assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
			assertFieldError(t, recorder, tt.field)
		})
	}
}

func TestCamerasHandler_ListAndGet(t *testing.T) {
	store := mock.NewStore()
	id := store.Cameras.AddCamera(database.Camera{Name: "Gate", IPAddress: "10.0.0.20"})
	store.Cameras.AddCamera(database.Camera{Name: "Lobby", IPAddress: "10.0.0.21"})
	handler := NewCamerasHandler(store.Cameras)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/cameras", nil))
	assertStatusCode(t, recorder, http.StatusOK)
	var cameras []CameraResponse
	parseData(t, recorder, &cameras)
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cameras))
	}

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/cameras/1", nil), map[string]string{"id": "1"})
	recorder = httptest.NewRecorder()
	handler.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)
	var camera CameraResponse
	parseData(t, recorder, &camera)
	if camera.ID != id || camera.Name != "Gate" {
		t.Errorf("unexpected camera %+v", camera)
	}
}

func TestCamerasHandler_Update(t *testing.T) {
	store := mock.NewStore()
	id := store.Cameras.AddCamera(database.Camera{Name: "Gate", IPAddress: "10.0.0.20", Location: "North"})
	handler := NewCamerasHandler(store.Cameras)

	tests := []struct {
		name     string
		body     string
		wantName string
		wantIP   string
	}{
		{"rename", `{"name": "Main gate"}`, "Main gate", "10.0.0.20"},
		{"move", `{"ip_address": "10.0.0.30"}`, "Main gate", "10.0.0.30"},
		{"empty update", `{}`, "Main gate", "10.0.0.30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithChiParams(jsonRequest(http.MethodPut, "/cameras/1", tt.body), map[string]string{"id": "1"})
			recorder := httptest.NewRecorder()
			handler.Update(recorder, req)

			assertStatusCode(t, recorder, http.StatusOK)
			var camera CameraResponse
			parseData(t, recorder, &camera)
			if camera.ID != id || camera.Name != tt.wantName || camera.IPAddress != tt.wantIP {
				t.Errorf("unexpected camera %+v", camera)
			}
			if camera.Location != "North" {
				t.Errorf("expected location to be unchanged, got %q", camera.Location)
			}
		})
	}
}

func TestCamerasHandler_Update_Errors(t *testing.T) {
	store := mock.NewStore()
	store.Cameras.AddCamera(database.Camera{Name: "Gate", IPAddress: "10.0.0.20"})
	handler := NewCamerasHandler(store.Cameras)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"unknown camera", "42", `{"name": "x"}`, http.StatusNotFound},
		{"empty name", "1", `{"name": ""}`, http.StatusUnprocessableEntity},
		{"invalid json", "1", `{`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithChiParams(jsonRequest(http.MethodPut, "/cameras/"+tt.id, tt.body), map[string]string{"id": tt.id})
			recorder := httptest.NewRecorder()
			handler.Update(recorder, req)
			assertStatusCode(t, recorder, tt.status)
		})
	}
}

func TestCamerasHandler_Delete(t *testing.T) {
	store := mock.NewStore()
	store.Cameras.AddCamera(database.Camera{Name: "Gate", IPAddress: "10.0.0.20"})
	handler := NewCamerasHandler(store.Cameras)

	req := requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/cameras/1", nil), map[string]string{"id": "1"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if env := parseEnvelope(t, recorder); env.Message != "Camera deleted successfully" {
		t.Errorf("unexpected message %q", env.Message)
	}

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestCamerasHandler_StoreError(t *testing.T) {
	store := mock.NewStore()
	store.Cameras.ListError = errors.New("connection reset")
	handler := NewCamerasHandler(store.Cameras)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/cameras", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "connection reset")
}
