package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// envelope mirrors Envelope with the data left raw for per-test decoding
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest creates a request with a JSON body
func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest creates a multipart POST with form fields and an optional file part
func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// parseEnvelope parses the response envelope and checks it mirrors the HTTP status
func parseEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
	if env.Status != recorder.Code {
		t.Errorf("envelope status %d does not mirror HTTP status %d", env.Status, recorder.Code)
	}
	return env
}

// parseData decodes the envelope data into target
func parseData(t *testing.T, recorder *httptest.ResponseRecorder, target any) envelope {
	t.Helper()
	env := parseEnvelope(t, recorder)
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("failed to parse data: %v\nData: %s", err, env.Data)
	}
	return env
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response carries the expected error message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var data map[string]string
	parseData(t, recorder, &data)
	if data["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, data["error"])
	}
}

// assertFieldError checks for a validation error on the given field
func assertFieldError(t *testing.T, recorder *httptest.ResponseRecorder, field string) {
	t.Helper()
	var data struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	env := parseData(t, recorder, &data)
	if env.Message != msgValidationError {
		t.Errorf("expected message %q, got %q", msgValidationError, env.Message)
	}
	for _, e := range data.Errors {
		if e.Field == field {
			return
		}
	}
	t.Errorf("expected a validation error for %q, got %+v", field, data.Errors)
}
