package redis

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type sessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// tokenCodec issues and parses the HS256 session tokens this backend hands
// out. Subject is the user ID; ID is a fresh UUID per token.
type tokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func (c tokenCodec) issue(userID, email, name string, verified bool, now time.Time) (string, error) {
	claims := sessionClaims{
		Email:    email,
		Name:     name,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c tokenCodec) parse(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
