package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/jwt"
	"github.com/xiebiao/bookworld/pkg/response"
)

const (
	ctxUserID   = "user_id"
	ctxEmail    = "email"
	ctxNickname = "nickname"
	ctxRole     = "role"
	ctxToken    = "access_token"
)

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token并把用户信息注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore user.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(auth.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abort(c, apperrors.ErrUnauthorized)
			return
		}

		// 已登出的Token在剩余有效期内不可再用
		blacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, apperrors.WithCode(err, apperrors.ErrCodeRedisError, "验证Token失败"))
			return
		}
		if blacklisted {
			abort(c, apperrors.ErrInvalidToken.WithMessage("Token已失效，请重新登录"))
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			abort(c, err)
			return
		}
		// Refresh Token不带角色，不能用来访问接口
		if claims.Role == "" {
			abort(c, apperrors.ErrInvalidToken)
			return
		}

		setIdentity(c, claims)
		c.Set(ctxToken, tokenString)
		c.Next()
	}
}

// OptionalAuth 可选登录，有合法Token就注入用户信息，否则按匿名处理
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := m.jwtManager.ParseToken(tokenString); err == nil && claims.Role != "" {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireStaff 要求管理人员（admin / developer / moderator），需放在RequireAuth之后
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).IsStaff() {
			abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求管理员
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != user.RoleAdmin {
			abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	// Authorization: Bearer <token>
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxNickname, claims.Nickname)
	c.Set(ctxRole, user.Role(claims.Role))
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// GetUserID 当前登录用户ID，未登录返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) user.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(user.Role); ok {
			return r
		}
	}
	return ""
}

// GetToken 当前请求使用的Access Token（登出时拉黑）
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) string {
	userID := GetUserID(c)
	if userID == "" {
		panic("user_id not found in context")
	}
	return userID
}
