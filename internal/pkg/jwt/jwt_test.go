package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitolite-sync/internal/pkg/config"
	pkgErrors "gitolite-sync/pkg/errors"
)

func TestGenerateAndValidate(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret", AccessTokenExpire: 60}

	token, err := GenerateAccessToken(cfg, "ops")
	require.NoError(t, err)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)

	_, err = ValidateToken(config.JWTConfig{Secret: "other"}, token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret", AccessTokenExpire: -10}

	token, err := GenerateAccessToken(cfg, "ops")
	require.NoError(t, err)

	// 未配置有效期时不过期
	_, err = ValidateToken(cfg, token)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Type:             "access",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ops", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err := expired.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(cfg, signed)
	assert.ErrorIs(t, err, pkgErrors.ErrTokenExpired)
}

func TestRejectsOtherTokenType(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Type: "refresh"})
	signed, err := token.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(cfg, signed)
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)
}
