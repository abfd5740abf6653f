package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"
const testIssuer = "perchfinder"

func signToken(t *testing.T, secret string, c claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return raw
}

func validClaims() claims {
	now := time.Now()
	return claims{
		Email:         "anna@example.com",
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "uid-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	raw := signToken(t, testSecret, validClaims())

	id, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UID != "uid-1" || id.Email != "anna@example.com" || !id.EmailVerified {
		t.Errorf("identity = %+v", id)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	raw := signToken(t, "other-secret", validClaims())

	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	c := validClaims()
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	raw := signToken(t, testSecret, c)

	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	c := validClaims()
	c.Issuer = "someone-else"
	raw := signToken(t, testSecret, c)

	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyUnverifiedEmail(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)
	c := validClaims()
	c.EmailVerified = false
	raw := signToken(t, testSecret, c)

	id, err := v.Verify(raw)
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("Verify() error = %v, want ErrEmailNotVerified", err)
	}
	if id == nil || id.UID != "uid-1" {
		t.Errorf("identity should still be returned for unverified email, got %+v", id)
	}
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner(testSecret, testIssuer, "service-uid", "service@perchfinder.app", time.Minute)
	v := NewVerifier(testSecret, testIssuer)

	raw, err := s.Sign()
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	id, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UID != "service-uid" || !id.EmailVerified {
		t.Errorf("identity = %+v", id)
	}
}
