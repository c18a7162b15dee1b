package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/encoder"
)

func userFields(email string) map[string]string {
	return map[string]string{
		"first_name": "Jan",
		"last_name":  "Novak",
		"email":      email,
		"phone":      "+420123456789",
	}
}

func TestUsersHandler_Create(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.encodings["jan-face"] = encodingOf(0.1)
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	req := multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "Jan Novák.jpg", []byte("jan-face"))
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	var data struct {
		User UserResponse `json:"user"`
	}
	resp := parseData(t, recorder, &data)
	if resp.Message != "User created successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if data.User.ID == 0 || data.User.Email != "jan@example.com" {
		t.Errorf("unexpected user %+v", data.User)
	}
	if data.User.PortraitURL != "/uploads/portraits/Jan_Novak.jpg" {
		t.Errorf("unexpected portrait url %q", data.User.PortraitURL)
	}
	if data.User.Phone == nil || *data.User.Phone != "+420123456789" {
		t.Errorf("unexpected phone %v", data.User.Phone)
	}

	stored, err := env.store.Users.Get(t.Context(), data.User.ID)
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.CreatedBy != "api" {
		t.Errorf("expected created_by 'api', got '%s'", stored.CreatedBy)
	}
	if n, _ := env.store.Encodings.Count(t.Context()); n != 1 {
		t.Errorf("expected 1 encoding, got %d", n)
	}
}

func TestUsersHandler_Create_DuplicateEmail(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.encodings["face"] = encodingOf(0.1)
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		req := multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "jan.jpg", []byte("face"))
		recorder := httptest.NewRecorder()
		handler.Create(recorder, req)

		assertStatusCode(t, recorder, want)
		if i == 1 {
			assertJSONError(t, recorder, "Email already exists")
		}
	}
	if env.store.Users.Count() != 1 {
		t.Errorf("expected 1 user, got %d", env.store.Users.Count())
	}
	if n, _ := env.store.Encodings.Count(t.Context()); n != 1 {
		t.Errorf("expected 1 encoding, got %d", n)
	}
}

func TestUsersHandler_Create_NoFace(t *testing.T) {
	env := newWorkflowEnv(t)
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	req := multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "wall.jpg", []byte("wall"))
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "No face found in the image")

	entries, err := os.ReadDir(env.portraits.Root())
	if err != nil {
		t.Fatalf("failed to read portraits dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected the portrait to be removed, found %d files", len(entries))
	}
}

func TestUsersHandler_Create_EncoderFailure(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.err = errors.New("embedding server unavailable")
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	req := multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "jan.jpg", []byte("face"))
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	var data map[string]string
	parseData(t, recorder, &data)
	if !strings.Contains(data["error"], "embedding server unavailable") {
		t.Errorf("expected the original message to be exposed, got %q", data["error"])
	}
}

func TestUsersHandler_Create_InvalidImage(t *testing.T) {
	env := newWorkflowEnv(t)
	env.encoder.err = encoder.ErrInvalidImage
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	req := multipartRequest(t, "/users", userFields("jan@example.com"), "portrait", "jan.txt", []byte("not an image"))
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestUsersHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   bool
		field  string
	}{
		{"missing first name", map[string]string{"last_name": "Novak", "email": "jan@example.com"}, true, "first_name"},
		{"invalid email", map[string]string{"first_name": "Jan", "last_name": "Novak", "email": "not-an-email"}, true, "email"},
		{"name too long", map[string]string{"first_name": strings.Repeat("a", 51), "last_name": "Novak", "email": "jan@example.com"}, true, "first_name"},
		{"phone too long", map[string]string{"first_name": "Jan", "last_name": "Novak", "email": "jan@example.com", "phone": strings.Repeat("1", 16)}, true, "phone"},
		{"missing portrait", userFields("jan@example.com"), false, "portrait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newWorkflowEnv(t)
			handler := NewUsersHandler(env.store.Users, env.registrar, "api")

			fileField := ""
			if tt.file {
				fileField = "portrait"
			}
			req := multipartRequest(t, "/users", tt.fields, fileField, "jan.jpg", []byte("face"))
			recorder := httptest.NewRecorder()
			handler.Create(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertFieldError(t, recorder, tt.field)
			if env.store.Users.Count() != 0 {
				t.Error("expected no user to be created")
			}
		})
	}
}

func TestUsersHandler_Create_NotMultipart(t *testing.T) {
	env := newWorkflowEnv(t)
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(http.MethodPost, "/users", `{"email": "jan@example.com"}`))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestUsersHandler_List(t *testing.T) {
	env := newWorkflowEnv(t)
	env.store.Users.AddUser(database.User{FirstName: "Jan", LastName: "Novak", Email: "jan@example.com", IsActive: true})
	env.store.Users.AddUser(database.User{FirstName: "Eva", LastName: "Dvorak", Email: "eva@example.com", PortraitPath: "uploads/portraits/eva.jpg"})
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/users", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var data struct {
		Users []UserResponse `json:"users"`
	}
	parseData(t, recorder, &data)
	if len(data.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(data.Users))
	}
	if data.Users[0].Email != "jan@example.com" || data.Users[1].Email != "eva@example.com" {
		t.Errorf("expected users in id order, got %+v", data.Users)
	}
	if data.Users[0].Phone != nil {
		t.Errorf("expected null phone, got %v", *data.Users[0].Phone)
	}
	if data.Users[1].PortraitURL != "/uploads/portraits/eva.jpg" {
		t.Errorf("unexpected portrait url %q", data.Users[1].PortraitURL)
	}
}

func TestUsersHandler_List_Empty(t *testing.T) {
	env := newWorkflowEnv(t)
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/users", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if !strings.Contains(recorder.Body.String(), `"users":[]`) {
		t.Errorf("expected an empty users array, got %s", recorder.Body.String())
	}
}

func TestUsersHandler_Get(t *testing.T) {
	env := newWorkflowEnv(t)
	id := env.store.Users.AddUser(database.User{FirstName: "Jan", LastName: "Novak", Email: "jan@example.com"})
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"existing", strconv.FormatInt(id, 10), http.StatusOK},
		{"unknown", "99", http.StatusNotFound},
		{"not a number", "abc", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/users/"+tt.id, nil), map[string]string{"id": tt.id})
			recorder := httptest.NewRecorder()
			handler.Get(recorder, req)
			assertStatusCode(t, recorder, tt.status)
		})
	}
}

func TestUsersHandler_List_StoreError(t *testing.T) {
	env := newWorkflowEnv(t)
	env.store.Users.ListError = errors.New("connection refused")
	handler := NewUsersHandler(env.store.Users, env.registrar, "api")

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/users", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "connection refused")
}
