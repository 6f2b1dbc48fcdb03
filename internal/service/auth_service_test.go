package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kekspay-gateway/internal/core/ports/mocks"
	"kekspay-gateway/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAdminHash = "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"

func setupAuthService(t *testing.T, admin AdminCredentials) (
	*AuthServiceImpl,
	*mocks.MockHashService,
	*mocks.MockTokenService,
) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	return NewAuthService(admin, hashSvc, tokenSvc), hashSvc, tokenSvc
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, hashSvc, tokenSvc := setupAuthService(t, AdminCredentials{Username: "admin", PasswordHash: testAdminHash})
	ctx := context.Background()
	expiry := time.Now().Add(12 * time.Hour)

	hashSvc.EXPECT().Verify("correct", testAdminHash).Return(true, nil)
	tokenSvc.EXPECT().Generate("admin").Return("jwt-token", expiry, nil)

	token, exp, err := svc.Login(ctx, "admin", "correct")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, hashSvc, _ := setupAuthService(t, AdminCredentials{Username: "admin", PasswordHash: testAdminHash})

	hashSvc.EXPECT().Verify("wrong", testAdminHash).Return(false, nil)

	_, _, err := svc.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "AUTH_001"))
}

func TestAuthService_Login_WrongUsernameStillVerifiesPassword(t *testing.T) {
	svc, hashSvc, _ := setupAuthService(t, AdminCredentials{Username: "admin", PasswordHash: testAdminHash})

	hashSvc.EXPECT().Verify("correct", testAdminHash).Return(true, nil)

	_, _, err := svc.Login(context.Background(), "root", "correct")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "AUTH_001"))
}

func TestAuthService_Login_NoHashConfigured(t *testing.T) {
	svc, _, _ := setupAuthService(t, AdminCredentials{Username: "admin"})

	_, _, err := svc.Login(context.Background(), "admin", "anything")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "AUTH_001"))
}

func TestAuthService_Login_HashError(t *testing.T) {
	svc, hashSvc, _ := setupAuthService(t, AdminCredentials{Username: "admin", PasswordHash: "garbage"})

	hashSvc.EXPECT().Verify("pw", "garbage").Return(false, errors.New("invalid hash format"))

	_, _, err := svc.Login(context.Background(), "admin", "pw")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "SYS_001"))
}

func TestAuthService_Login_TokenError(t *testing.T) {
	svc, hashSvc, tokenSvc := setupAuthService(t, AdminCredentials{Username: "admin", PasswordHash: testAdminHash})

	hashSvc.EXPECT().Verify("correct", testAdminHash).Return(true, nil)
	tokenSvc.EXPECT().Generate("admin").Return("", time.Time{}, errors.New("signing failed"))

	_, _, err := svc.Login(context.Background(), "admin", "correct")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "SYS_001"))
}
