package domain

import (
	"errors"
	"time"
)

// User is an account holder that owns at most one wallet.
type User struct {
	ID             string
	Email          string
	Phone          string
	FirstName      string
	LastName       string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Verified       bool
	Active         bool
}

// Session binds an issued access token to a user until it expires or the
// user logs out.
type Session struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user is inactive")
)

// IsAuthError reports whether err should be reported as an authentication
// failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrUserInactive)
}
