// Package middleware 提供 HTTP 请求的中间件
// 包括 JWT 认证、CORS 跨域、日志记录和 panic 恢复
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mealmood-server/internal/cache"
	"mealmood-server/pkg/jwt"
	"mealmood-server/pkg/response"
)

// 上下文中保存认证信息的键
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "email"
	ContextUserName  = "name"
	ContextToken     = "token"
	ContextTokenExp  = "token_exp"
)

// AuthMiddleware 创建 JWT 认证中间件
// Token 优先从 Authorization: Bearer 读取，没有时读取 Cookie
// 参数:
//   - jwtService: JWT 服务实例
//   - tokenCache: 用于检查 Token 黑名单
//   - cookieName: 浏览器端保存 Token 的 Cookie 名
//
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func AuthMiddleware(jwtService *jwt.JWTService, tokenCache cache.Cache, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := ExtractToken(c, cookieName)
		if !ok {
			response.Unauthorized(c, "로그인이 필요합니다.")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "토큰이 유효하지 않거나 만료되었습니다.")
			c.Abort()
			return
		}

		// 登出后的 Token 进入黑名单
		if tokenCache.IsTokenBlacklisted(c.Request.Context(), cache.HashToken(tokenString)) {
			response.Unauthorized(c, "로그아웃된 토큰입니다. 다시 로그인해 주세요.")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// ExtractToken 从请求中取出 Token
// 格式错误的 Authorization 头视为未提供
func ExtractToken(c *gin.Context, cookieName string) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token, true
		}
	}
	return "", false
}

// GetUserID 从上下文获取用户 ID，未认证返回 0
func GetUserID(c *gin.Context) int64 {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0
	}
	id, _ := userID.(int64)
	return id
}

// GetToken 获取当前请求的原始 Token 及其过期时间
func GetToken(c *gin.Context) (string, time.Time) {
	token := c.GetString(ContextToken)
	exp, _ := c.Get(ContextTokenExp)
	expireAt, _ := exp.(time.Time)
	return token, expireAt
}
