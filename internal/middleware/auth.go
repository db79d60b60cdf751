package middleware

import (
	"context"
	"net/http"
	"strings"

	"picstorm-server/internal/common"
	"picstorm-server/internal/model"
	"picstorm-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUserID      = "id"
	ContextNickname    = "nickname"
	ContextAuthorities = "authorities"
)

// RoleLookup 查询用户当前角色（带缓存），由 UserService 实现。
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID uint) (model.Role, error)
}

func bearerToken(c *gin.Context) (string, bool, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, ""
	}
	// 检查格式是否为 "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, "Token 格式错误"
	}
	return parts[1], true, ""
}

func setClaims(c *gin.Context, claims *utils.AccessClaims) {
	c.Set(ContextUserID, claims.ID)
	c.Set(ContextNickname, claims.Nickname())
	c.Set(ContextAuthorities, claims.Authorities)
}

// JWTAuth 要求请求携带有效的访问令牌。
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, formatErr := bearerToken(c)
		if !present {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "需要认证才能访问"})
			c.Abort()
			return
		}
		if formatErr != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": formatErr})
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth 未携带令牌时按匿名访问处理；携带了但无效时仍返回 401。
func OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, formatErr := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if formatErr != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": formatErr})
			c.Abort()
			return
		}
		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireAuthority 校验令牌中是否携带指定权限，需在 JWTAuth 之后使用。
func RequireAuthority(authority model.Authority) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextAuthorities)
		authorities, ok := value.([]string)
		if !exists || !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "权限不足"})
			c.Abort()
			return
		}
		for _, a := range authorities {
			if a == string(authority) {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "权限不足"})
		c.Abort()
	}
}

// BannedUserCheck 重新读取用户当前角色，使封禁在令牌过期前即生效。
func BannedUserCheck(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
			c.Abort()
			return
		}
		uid, ok := userID.(uint)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的用户ID类型"})
			c.Abort()
			return
		}

		role, err := roles.CurrentRole(c.Request.Context(), uid)
		if err != nil {
			if common.IsCode(err, common.ErrorCodeNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "校验用户状态失败"})
			}
			c.Abort()
			return
		}
		if role == model.RoleBanned {
			c.JSON(http.StatusForbidden, gin.H{"error": "账号已被封禁"})
			c.Abort()
			return
		}
		c.Next()
	}
}
