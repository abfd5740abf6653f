package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrEmailNotVerified = errors.New("email not verified")
)

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

type claims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens issued for the app.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a token verifier.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a raw token string. It returns
// ErrEmailNotVerified for a structurally valid token whose email claim is
// unverified; the caller decides what status that maps to.
func (v *Verifier) Verify(raw string) (*Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if c.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
	}
	if !c.EmailVerified {
		return identity, ErrEmailNotVerified
	}
	return identity, nil
}

// Signer mints short-lived service tokens. The in-process requester uses it
// to authenticate against the advice endpoint the same way a user client
// would.
type Signer struct {
	secret []byte
	issuer string
	uid    string
	email  string
	ttl    time.Duration
}

// NewSigner creates a service token signer.
func NewSigner(secret, issuer, uid, email string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), issuer: issuer, uid: uid, email: email, ttl: ttl}
}

// Sign returns a fresh signed token.
func (s *Signer) Sign() (string, error) {
	now := time.Now()
	c := claims{
		Email:         s.email,
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   s.uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}
