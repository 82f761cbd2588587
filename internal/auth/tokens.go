package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/parley/internal/domain"
)

// Claims carries the token payload. The username is denormalized into the
// token so the verifier can fall back to it if it ever needs to; the subject
// is the user's full record id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager mints and parses the bearer tokens used both by the REST
// surface and as the connection credential for the realtime session layer.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewTokenManager creates a TokenManager signing with HS256.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "parley",
	}
}

// Issue creates a signed token for the given user.
func (m *TokenManager) Issue(user *domain.User) (string, error) {
	if user.ID == nil {
		return "", fmt.Errorf("cannot issue token for user without id")
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims. Any failure
// (malformed, expired, wrong signature) comes back as
// domain.ErrInvalidCredentials.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}
