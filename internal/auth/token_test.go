package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "0c5b0df5-5b35-4b0a-9d1a-3f2e1d4c5b6a", Role: domain.RoleUser}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour)
	user := testUser()

	token, expires, err := tm.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expires) > 16*time.Minute {
		t.Errorf("access expiry too far out: %v", expires)
	}

	claims, err := tm.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleUser {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("token type = %s, want access", claims.TokenType)
	}
}

func TestRefreshTokenCannotAuthenticate(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour)

	refresh, _, err := tm.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// A valid signature is not enough; the type claim must match.
	if _, err := tm.ParseAccessToken(refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
	if _, err := tm.ParseRefreshToken(refresh); err != nil {
		t.Fatalf("refresh path must accept it: %v", err)
	}
}

func TestAccessTokenRejectedOnRefreshPath(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour)

	access, _, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.ParseRefreshToken(access); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 15*time.Minute, 720*time.Hour)
	other := NewTokenManager("secret-b", 15*time.Minute, 720*time.Hour)

	token, _, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ParseAccessToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenGarbageInput(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour)
	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := tm.ParseAccessToken(bad); err == nil {
			t.Errorf("ParseAccessToken(%q) accepted garbage", bad)
		}
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour)
	user := testUser()

	// Two tokens minted back to back must differ; rotation compares
	// exact string values.
	a, _, err := tm.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _, err := tm.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatalf("consecutive refresh tokens must not collide")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, 720*time.Hour)
	tm.accessTTL = -time.Minute // force already-expired expiry

	token, _, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.ParseAccessToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}
