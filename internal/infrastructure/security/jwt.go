package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inotebook/backend/internal/core/domain"
)

// sessionClaims is the token payload: {"user": {"id": ...}, "iat": ...}.
type sessionClaims struct {
	User sessionUser `json:"user"`
	jwt.RegisteredClaims
}

type sessionUser struct {
	ID string `json:"id"`
}

// JWTIssuer signs and verifies HS256 session tokens with a single secret
// fixed at construction.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer returns an issuer for secret. A positive ttl adds an exp
// claim; zero issues tokens that never expire.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *JWTIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := sessionClaims{
		User: sessionUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by token. Failures are either
// domain.ErrMalformedToken or domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", domain.ErrMalformedToken
		}
		return "", domain.ErrInvalidToken
	}
	if claims.User.ID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.User.ID, nil
}
