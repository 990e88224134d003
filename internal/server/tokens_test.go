package server

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/shared"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestTokenIssuer(t *testing.T) {
	clock := fixedNow
	issuer, err := NewTokenIssuer([]byte("test-secret"), time.Hour, func() time.Time { return clock })
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	t.Run("Round Trip", func(t *testing.T) {
		token, err := issuer.Issue("user-1", "admin")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.UserID != "user-1" || claims.Role != "admin" || claims.Subject != "user-1" {
			t.Errorf("unexpected claims: %+v", claims)
		}
		if !claims.ExpiresAt.Time.Equal(fixedNow.Add(time.Hour)) {
			t.Errorf("unexpected expiry: %v", claims.ExpiresAt)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		token, _ := issuer.Issue("user-1", "user")
		clock = fixedNow.Add(2 * time.Hour)
		defer func() { clock = fixedNow }()

		if _, err := issuer.Verify(token); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other, _ := NewTokenIssuer([]byte("other-secret"), time.Hour, func() time.Time { return fixedNow })
		token, _ := other.Issue("user-1", "user")

		if _, err := issuer.Verify(token); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Unsigned Token", func(t *testing.T) {
		claims := &Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuerName}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		if _, err := issuer.Verify(token); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Empty Secret", func(t *testing.T) {
		if _, err := NewTokenIssuer(nil, time.Hour, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Default TTL", func(t *testing.T) {
		i, _ := NewTokenIssuer([]byte("s"), 0, func() time.Time { return fixedNow })
		token, _ := i.Issue("u", "user")
		claims, err := i.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if !claims.ExpiresAt.Time.Equal(fixedNow.Add(24 * time.Hour)) {
			t.Errorf("expected 24h expiry, got %v", claims.ExpiresAt)
		}
	})
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("expected a hash, got the password")
	}
	if !CheckPassword("hunter22", hash) {
		t.Error("expected password to match")
	}
	if CheckPassword("hunter23", hash) {
		t.Error("expected wrong password to fail")
	}
}
