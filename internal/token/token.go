// Package token issues and verifies the signed bearer credentials used by
// the API. Tokens are HS256 JWTs whose validity window is fixed at issuance;
// a token cannot be renewed, only reissued.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "shivaccounts"

var (
	// ErrMalformed indicates the token could not be decoded, or decoded to
	// claims missing a subject or issued-at timestamp.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired indicates the token's validity window has passed.
	ErrExpired = errors.New("token: expired")
	// ErrNotYetValid indicates the token carries a not-before in the future.
	ErrNotYetValid = errors.New("token: not yet valid")
	// ErrBadSignature indicates the integrity check failed.
	ErrBadSignature = errors.New("token: bad signature")
)

// Claims are the decoded fields inside a token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given subject. The expiry is fixed relative to
// now and travels inside the token.
func Issue(subject, role string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("token: subject is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("token: ttl must be greater than zero")
	}
	now = now.UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and validity window and returns the decoded
// claims. It is a pure function of (raw, secret, now): no side effects, no
// wall-clock reads.
func Verify(raw string, secret []byte, now time.Time) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrBadSignature
		}
		return secret, nil
	},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	// The signature alone is not enough: claims without a subject or an
	// issued-at cannot be resolved to a session later.
	if strings.TrimSpace(claims.Subject) == "" || claims.IssuedAt == nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
