package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
)

// AdminCredentials is the configured shop administrator login.
type AdminCredentials struct {
	Username     string
	PasswordHash string // argon2id encoded
}

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	admin    AdminCredentials
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(admin AdminCredentials, hashSvc ports.HashService, tokenSvc ports.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		admin:    admin,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
	}
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if s.admin.PasswordHash == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1

	// The password is checked whether or not the username matched.
	valid, err := s.hashSvc.Verify(password, s.admin.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid || !userOK {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(s.admin.Username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}
