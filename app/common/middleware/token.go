package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrSecretEmpty  = errors.New("token secret is empty")
	ErrTokenInvalid = errors.New("invalid token claims")
)

type jwtClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func parseToken(tokenStr, secret string) (*jwtClaims, error) {
	if tokenStr == "" {
		return nil, ErrTokenEmpty
	}
	if secret == "" {
		return nil, ErrSecretEmpty
	}

	token, err := jwt.ParseWithClaims(tokenStr, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
