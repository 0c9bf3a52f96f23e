package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/response"
	"filesafe/internal/security"
)

// CurrentUserKey 认证通过的用户在gin上下文中的键
const CurrentUserKey = "current_user"

// AuthMiddleware 身份认证中间件
// 从Authorization头解析Bearer令牌，校验后解析出当前用户
type AuthMiddleware struct {
	tokens *security.TokenService
	users  repository.UserRepository
}

// NewAuthMiddleware 创建身份认证中间件实例
func NewAuthMiddleware(tokens *security.TokenService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// RequireAuth 保护需要登录的接口
// 令牌缺失、令牌无效（格式错误/签名不符/已过期）、
// 令牌主体对应的用户不存在，三种情况对外统一返回同一个401，
// 不泄露具体失败原因
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.reject(c)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			m.reject(c)
			return
		}

		subject, err := m.tokens.Verify(tokenString)
		if err != nil {
			logger.Debugf("令牌校验失败: %v", err)
			m.reject(c)
			return
		}

		user, err := m.users.FindByUsername(subject)
		if err != nil {
			if !apperrors.IsCode(err, apperrors.ErrRecordNotFound) {
				logger.Errorf("认证时查询用户失败 (主体: '%s'): %v", subject, err)
			}
			m.reject(c)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// reject 以统一的401响应中止请求
func (m *AuthMiddleware) reject(c *gin.Context) {
	response.Unauthorized(c, apperrors.GetErrorMessage(apperrors.ErrUnauthorized))
	c.Abort()
}

// CurrentUser 从gin上下文中取出认证通过的用户
// 仅在RequireAuth保护的接口内有效
func CurrentUser(c *gin.Context) (*database.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*database.User)
	return user, ok
}
