package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
)

func TestJWTManagerIssueAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute, time.Hour)

	pair, err := manager.Issue("user-123")
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("expected distinct access and refresh tokens")
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("expected refresh token to outlive access token: %+v", pair)
	}

	userID, err := manager.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("expected user-123, got %s", userID)
	}

	userID, err = manager.VerifyRefresh(pair.RefreshToken)
	if err != nil || userID != "user-123" {
		t.Fatalf("expected refresh token to verify, got user=%s err=%v", userID, err)
	}
}

func TestJWTManagerTokenTypesAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute, time.Hour)

	pair, err := manager.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	if _, err := manager.Verify(pair.RefreshToken); err != domain.ErrInvalidToken {
		t.Fatalf("expected refresh token to be rejected as access token, got %v", err)
	}
	if _, err := manager.VerifyRefresh(pair.AccessToken); err != domain.ErrInvalidToken {
		t.Fatalf("expected access token to be rejected as refresh token, got %v", err)
	}
}

func TestJWTManagerIssuesUniqueTokenIDs(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute, time.Hour)

	first, err := manager.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := manager.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if first.AccessToken == second.AccessToken {
		t.Fatalf("expected tokens issued in the same second to differ")
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute, time.Hour)

	expiredClaims := auth.Claims{
		UserID:    "expired",
		TokenType: auth.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute, time.Hour)
	if _, err := otherManager.Verify(expiredToken); err == nil || err == domain.ErrExpiredToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}
