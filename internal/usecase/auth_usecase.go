package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gowallet/internal/domain"
)

// PasswordHashCost is the bcrypt cost used for new passwords.
const PasswordHashCost = 10

// AuthUseCase handles registration, login and token authentication.
type AuthUseCase struct {
	userRepo UserRepository
	sessions SessionStore
	tokens   TokenIssuer
	idGen    IDGenerator
	now      func() time.Time
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(userRepo UserRepository, sessions SessionStore, tokens TokenIssuer, idGen IDGenerator) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
		idGen:    idGen,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput represents input for registering a user
type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput represents login credentials
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with the tokens issued for it.
type AuthResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// Register creates a user and opens a session for it.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.FirstName); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.LastName); err != nil {
		return nil, err
	}

	_, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		HashedPassword: hashedPassword,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return uc.openSession(ctx, user)
}

// Login verifies credentials and opens a session.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := verifyPassword(user.HashedPassword, input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	return uc.openSession(ctx, user)
}

// Refresh exchanges a refresh token for a new token pair and session. The
// user must still exist and be active.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uc.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	return uc.openSession(ctx, user)
}

// Logout ends the session bound to token.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	return uc.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token to the user id it was issued for.
// The token must carry a valid signature and an open session.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	userID, err := uc.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	session, err := uc.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}

	if session.UserID != userID || session.Expired(uc.now()) {
		return "", domain.ErrExpiredToken
	}

	return userID, nil
}

// Me returns the user behind an authenticated request.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

func (uc *AuthUseCase) openSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	tokens, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       user.ID,
		ExpiresAt:    tokens.AccessExpiresAt,
		CreatedAt:    uc.now(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	// Don't return hashed password
	user.HashedPassword = ""
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: must not exceed %d bytes", domain.ErrPasswordTooWeak, domain.MaxPasswordLength)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
