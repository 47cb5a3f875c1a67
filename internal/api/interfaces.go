package api

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/limbo/habitrack/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	// Any failure wraps errorvalues.ErrInvalidToken
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
