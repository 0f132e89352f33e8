package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
)

// AdminClaims 管理接口Claims
type AdminClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成访问Token, subject 为调用方名称
func GenerateAccessToken(cfg config.JWTConfig, subject string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Type: constants.JWTTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if cfg.AccessTokenExpire > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(cfg.AccessTokenExpire) * time.Second))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析Token
func ParseToken(cfg config.JWTConfig, tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err)
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateToken 验证Token有效性, 只接受访问Token
func ValidateToken(cfg config.JWTConfig, tokenString string) (*AdminClaims, error) {
	claims, err := ParseToken(cfg, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != constants.JWTTypeAccess {
		return nil, pkgErrors.ErrInvalidToken
	}
	return claims, nil
}
