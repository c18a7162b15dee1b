package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler checks credentials against the configured admin account
type AuthHandler struct {
	username string
	password string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.AdminConfig) *AuthHandler {
	return &AuthHandler{
		username: cfg.Username,
		password: cfg.Password,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies the credentials. No session or token is issued.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, r, err, false)
		return
	}
	if err := validateStruct(req); err != nil {
		respondFailure(w, r, err, false)
		return
	}

	if !h.check(req.Username, req.Password) {
		logger.FromContext(r.Context()).Warn("Login failed", zap.String("username", sanitizeForLog(req.Username)))
		respondJSON(w, http.StatusUnauthorized, "Invalid credentials", map[string]string{"message": "Invalid credentials"})
		return
	}
	respondJSON(w, http.StatusOK, "Login successful", map[string]string{"message": "Login successful"})
}

// check compares in constant time. A configured password starting with "$2" is a bcrypt hash.
func (h *AuthHandler) check(username, password string) bool {
	if h.username == "" || h.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.username)) == 1
	var passOK bool
	if strings.HasPrefix(h.password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(h.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) == 1
	}
	return userOK && passOK
}
