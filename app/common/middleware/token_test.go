package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// signAccessToken mints a token in the claim layout the auth service issues.
func signAccessToken(secret string, ttl time.Duration, userID int64, username string) (string, error) {
	if secret == "" {
		return "", ErrSecretEmpty
	}
	now := time.Now()
	claims := jwtClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
