package middleware

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware 公开接口可选登录，token 无效时按游客处理
func TryAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}

// RoleMiddleware 管理员拥有全部权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type AccountChecker interface {
	IsDisabled(userID uint) (bool, error)
}

// ActiveAccountMiddleware 被禁用的账号 token 未过期也拒绝
func ActiveAccountMiddleware(checker AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.Next()
			return
		}
		disabled, err := checker.IsDisabled(claims.UserID)
		if err != nil || disabled {
			util.Error(c, 403, "account disabled")
			c.Abort()
			return
		}
		c.Next()
	}
}
