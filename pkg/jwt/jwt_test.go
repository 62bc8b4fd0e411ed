package jwt

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAccessTokenRoundTrip(t *testing.T) {
	s := NewJWTService(testSecret, time.Hour, 24*time.Hour)

	token, err := s.GenerateAccessToken(42, "a@b.com", "민수")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@b.com" || claims.Name != "민수" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := s.ValidateRefreshToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestRefreshTokenCannotAuthenticate(t *testing.T) {
	s := NewJWTService(testSecret, time.Hour, 24*time.Hour)

	token, err := s.GenerateRefreshToken(1, "a@b.com", "a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.ValidateRefreshToken(token); err != nil {
		t.Fatalf("refresh should validate: %v", err)
	}
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate, got %v", err)
	}
}

func TestExpiredAndForeignTokens(t *testing.T) {
	s := NewJWTService(testSecret, time.Minute, time.Hour)
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }

	token, err := s.GenerateAccessToken(1, "a@b.com", "a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	s.now = time.Now
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired, got %v", err)
	}

	other := NewJWTService("another-secret-another-secret-xx", time.Hour, time.Hour)
	foreign, _ := other.GenerateAccessToken(1, "a@b.com", "a")
	if _, err := s.ValidateToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid for foreign signature, got %v", err)
	}

	if _, err := s.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid for garbage, got %v", err)
	}
}
