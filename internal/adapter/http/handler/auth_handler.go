package handler

import (
	"context"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*usecase.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// AuthRecorder observes register and login outcomes.
type AuthRecorder interface {
	AuthAttempt(action string, ok bool)
}

type nopAuthRecorder struct{}

func (nopAuthRecorder) AuthAttempt(string, bool) {}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUC   AuthService
	recorder AuthRecorder
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUC AuthService) *AuthHandler {
	return &AuthHandler{
		authUC:   authUC,
		recorder: nopAuthRecorder{},
	}
}

// WithRecorder sets the recorder for auth attempts.
func (h *AuthHandler) WithRecorder(rec AuthRecorder) *AuthHandler {
	if rec != nil {
		h.recorder = rec
	}
	return h
}

// Register creates a user and opens a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authUC.Register(r.Context(), req.ToUseCaseInput())
	h.recorder.AuthAttempt("register", err == nil)
	if err != nil {
		writeDomainError(w, r, err, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AuthFromResult("User registered successfully", result))
}

// Login checks credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authUC.Login(r.Context(), req.ToUseCaseInput())
	h.recorder.AuthAttempt("login", err == nil)
	if err != nil {
		writeDomainError(w, r, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthFromResult("Login successful", result))
}

// Refresh trades a refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authUC.Refresh(r.Context(), req.RefreshToken)
	h.recorder.AuthAttempt("refresh", err == nil)
	if err != nil {
		writeDomainError(w, r, err, "Token refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthFromResult("Token refreshed", result))
}

// Logout ends the session of the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		token = middleware.BearerToken(r)
	}

	if token != "" {
		if err := h.authUC.Logout(r.Context(), token); err != nil {
			writeDomainError(w, r, err, "Logout failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.authUC.Me(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err, "Failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, dto.MeResponse{User: dto.UserFromDomain(user)})
}
