package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	clock        clock.Clock
}

// NewService hashes the configured password once so it is never compared in
// plain text.
func NewService(username, password string, secret []byte, ttl time.Duration, clk clock.Clock) (Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &service{username: username, passwordHash: hash, secret: secret, ttl: ttl, clock: clk}, nil
}

func (s *service) Login(_ context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	if !s.checkPassword(password) || !userOK {
		return "", apperror.New(apperror.ErrUnauthorized, "Invalid credentials")
	}

	now := s.clock.Now()
	claims := &Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			Subject:   username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) VerifyPassword(_ context.Context, password string) bool {
	return s.checkPassword(password)
}

func (s *service) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.New(apperror.ErrUnauthorized, "Invalid token")
	}
	return claims, nil
}

func (s *service) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}
