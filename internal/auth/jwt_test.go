package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	token, exp, err := Issue(42, "teacher", "school-test", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := Parse(token, "secret", "school-test")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user 42, got %d", claims.UserID)
	}
	if claims.Role != "teacher" {
		t.Errorf("expected role teacher, got %s", claims.Role)
	}
}

func TestParseExpiredToken(t *testing.T) {
	// Signed with the right key, expiry already in the past.
	token, _, err := Issue(1, "admin", "school-test", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err = Parse(token, "secret", "school-test")
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseWrongKey(t *testing.T) {
	token, _, err := Issue(1, "admin", "school-test", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err = Parse(token, "other-secret", "school-test")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseIssuerMismatch(t *testing.T) {
	token, _, err := Issue(1, "admin", "other-issuer", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err = Parse(token, "secret", "school-test")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("not.a.token", "secret", "school-test")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
