// Package auth implements PIN login, bearer token issue/parse and the gin
// middleware gating admin-only operations.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ervall/mediavault/internal/errors"
)

// Roles carried in the token's role claim.
const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// Claims is the token payload: subject, role and expiry.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the given subject and role.
func IssueToken(secret, subject, role string, expiry time.Duration) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAuthError("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewAuthError("could not validate credentials")
	}
	if claims.Role == "" {
		return nil, errors.NewAuthError("could not validate credentials")
	}
	return claims, nil
}
