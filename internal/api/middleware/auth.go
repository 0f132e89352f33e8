package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/jwt"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
	"gitolite-sync/pkg/responses"
)

// AuthMiddleware JWT认证中间件, 未配置 secret 时拒绝全部请求
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			responses.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "未配置JWT secret")
			c.Abort()
			return
		}

		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "Authorization格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(cfg, strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix))
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.JWTContextKey, claims.Subject)
		c.Next()
	}
}
