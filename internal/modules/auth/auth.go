package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login returns a signed token for the shop's single operator account.
	Login(ctx context.Context, username, password string) (string, error)
	// VerifyPassword re-checks the operator password for sensitive actions.
	VerifyPassword(ctx context.Context, password string) bool
	ParseToken(token string) (*Claims, error)
}

// Claims are carried by every issued token.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VerifyPasswordRequest struct {
	Password string `json:"password"`
}
