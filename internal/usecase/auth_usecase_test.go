package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

type authMocks struct {
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionStore
	tokens   *mocks.MockTokenIssuer
	idGen    *mocks.MockIDGenerator
}

func newAuthMocks(t *testing.T) (*authMocks, *usecase.AuthUseCase) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &authMocks{
		users:    mocks.NewMockUserRepository(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
		tokens:   mocks.NewMockTokenIssuer(ctrl),
		idGen:    mocks.NewMockIDGenerator(ctrl),
	}
	m.idGen.EXPECT().Generate().Return("user-1").AnyTimes()
	return m, usecase.NewAuthUseCase(m.users, m.sessions, m.tokens, m.idGen)
}

func tokenPair() *usecase.TokenPair {
	now := time.Now().UTC()
	return &usecase.TokenPair{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		AccessExpiresAt:  now.Add(time.Hour),
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestAuthUseCase_Register(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()

	m.users.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(nil, domain.ErrUserNotFound)
	m.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
		assert.Equal(t, "ada@example.com", u.Email)
		assert.True(t, u.Active)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("StrongPass1")))
		return nil
	})
	m.tokens.EXPECT().Issue("user-1").Return(tokenPair(), nil)
	m.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.Session) error {
		assert.Equal(t, "access", s.Token)
		assert.Equal(t, "refresh", s.RefreshToken)
		assert.Equal(t, "user-1", s.UserID)
		return nil
	})

	result, err := uc.Register(ctx, usecase.RegisterInput{
		Email:     " Ada@Example.com ",
		Password:  "StrongPass1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.Empty(t, result.User.HashedPassword)
	assert.Equal(t, "access", result.Tokens.AccessToken)
}

func TestAuthUseCase_Register_ValidationAndDuplicates(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, usecase.RegisterInput{Email: "bad", Password: "StrongPass1", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = uc.Register(ctx, usecase.RegisterInput{Email: "a@b.io", Password: "weak", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, domain.ErrPasswordTooWeak)

	_, err = uc.Register(ctx, usecase.RegisterInput{Email: "a@b.io", Password: "StrongPass1", LastName: "B"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	m.users.EXPECT().GetByEmail(gomock.Any(), "a@b.io").Return(&domain.User{ID: "existing"}, nil)
	_, err = uc.Register(ctx, usecase.RegisterInput{Email: "a@b.io", Password: "StrongPass1", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestAuthUseCase_Login(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("StrongPass1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := func() *domain.User {
		return &domain.User{ID: "user-1", Email: "ada@example.com", HashedPassword: string(hash), Active: true}
	}

	m.users.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(user(), nil)
	m.tokens.EXPECT().Issue("user-1").Return(tokenPair(), nil)
	m.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	result, err := uc.Login(ctx, usecase.LoginInput{Email: "ada@example.com", Password: "StrongPass1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)

	m.users.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(user(), nil)
	_, err = uc.Login(ctx, usecase.LoginInput{Email: "ada@example.com", Password: "WrongPass1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	m.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, domain.ErrUserNotFound)
	_, err = uc.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "StrongPass1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	inactive := user()
	inactive.Active = false
	m.users.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(inactive, nil)
	_, err = uc.Login(ctx, usecase.LoginInput{Email: "ada@example.com", Password: "StrongPass1"})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	_, err := uc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	m.tokens.EXPECT().Verify("good").Return("user-1", nil)
	m.sessions.EXPECT().Get(gomock.Any(), "good").Return(&domain.Session{Token: "good", UserID: "user-1", ExpiresAt: future}, nil)
	userID, err := uc.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	m.tokens.EXPECT().Verify("forged").Return("", domain.ErrInvalidToken)
	_, err = uc.Authenticate(ctx, "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	m.tokens.EXPECT().Verify("logged-out").Return("user-1", nil)
	m.sessions.EXPECT().Get(gomock.Any(), "logged-out").Return(nil, domain.ErrSessionNotFound)
	_, err = uc.Authenticate(ctx, "logged-out")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	m.tokens.EXPECT().Verify("expired").Return("user-1", nil)
	m.sessions.EXPECT().Get(gomock.Any(), "expired").Return(&domain.Session{Token: "expired", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}, nil)
	_, err = uc.Authenticate(ctx, "expired")
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestAuthUseCase_LogoutAndMe(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()

	m.sessions.EXPECT().Delete(gomock.Any(), "access").Return(nil)
	require.NoError(t, uc.Logout(ctx, "access"))

	m.users.EXPECT().GetByID(gomock.Any(), "user-1").Return(&domain.User{ID: "user-1", HashedPassword: "secret"}, nil)
	user, err := uc.Me(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, user.HashedPassword)
}

func TestAuthUseCase_Refresh(t *testing.T) {
	m, uc := newAuthMocks(t)
	ctx := context.Background()

	_, err := uc.Refresh(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	m.tokens.EXPECT().VerifyRefresh("refresh").Return("user-1", nil)
	m.users.EXPECT().GetByID(gomock.Any(), "user-1").Return(&domain.User{ID: "user-1", HashedPassword: "secret", Active: true}, nil)
	m.tokens.EXPECT().Issue("user-1").Return(tokenPair(), nil)
	m.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.Session) error {
		assert.Equal(t, "access", s.Token)
		assert.Equal(t, "user-1", s.UserID)
		return nil
	})
	result, err := uc.Refresh(ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "access", result.Tokens.AccessToken)
	assert.Empty(t, result.User.HashedPassword)

	m.tokens.EXPECT().VerifyRefresh("access").Return("", domain.ErrInvalidToken)
	_, err = uc.Refresh(ctx, "access")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	m.tokens.EXPECT().VerifyRefresh("orphan").Return("user-9", nil)
	m.users.EXPECT().GetByID(gomock.Any(), "user-9").Return(nil, domain.ErrUserNotFound)
	_, err = uc.Refresh(ctx, "orphan")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	m.tokens.EXPECT().VerifyRefresh("disabled").Return("user-2", nil)
	m.users.EXPECT().GetByID(gomock.Any(), "user-2").Return(&domain.User{ID: "user-2", Active: false}, nil)
	_, err = uc.Refresh(ctx, "disabled")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}
