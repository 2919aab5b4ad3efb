package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expires, err := tm.GenerateToken(&domain.User{ID: 42, Role: domain.RoleAgent})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expires.IsZero() {
		t.Fatal("expected expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != domain.RoleAgent || claims.Subject != "42" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", 5).GenerateToken(&domain.User{ID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("two", 5).ParseToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !PasswordMatches(hash, "s3cret!") {
		t.Fatal("expected match")
	}
	if PasswordMatches(hash, "wrong") || PasswordMatches("", "s3cret!") {
		t.Fatal("expected mismatch")
	}

	if _, err := HashPassword(strings.Repeat("x", MaxPasswordBytes+1), bcrypt.MinCost); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
