package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/security"
)

const identityKey = "campus.identity"

// TokenVerifier 由 security.TokenIssuer 实现
type TokenVerifier interface {
	Verify(token string) (*security.Identity, error)
}

// RoleLookup 读取存储中的当前角色，由 service.AuthService 实现
type RoleLookup interface {
	RoleOf(ctx context.Context, userID uint64) (enums.Role, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// OptionalAuth 令牌有效时注入身份，否则按匿名继续
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if identity, err := verifier.Verify(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// RequireAuth 缺少或无效的令牌返回 401
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "access token required")
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin 必须挂在 RequireAuth 之后。
// 角色从存储读取，令牌里的快照不可信。
func RequireAdmin(roles RoleLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "access token required")
			return
		}
		role, err := roles.RoleOf(c.Request.Context(), identity.ID)
		if err != nil {
			if errors.Is(err, myErrors.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			logger.Error("查询用户角色失败", zap.Uint64("userID", identity.ID), zap.Error(err))
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}
		if role != enums.RoleAdmin {
			abort(c, http.StatusForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

// InternalOnly 校验内部调用密钥。key 为空时拒绝所有请求。
func InternalOnly(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(constant.InternalKeyHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			abort(c, http.StatusForbidden, "internal endpoint")
			return
		}
		c.Next()
	}
}

// IdentityFrom 取出当前请求的身份
func IdentityFrom(c *gin.Context) (*security.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*security.Identity)
	return identity, ok && identity != nil
}

// ViewerID 匿名时为 0
func ViewerID(c *gin.Context) uint64 {
	if identity, ok := IdentityFrom(c); ok {
		return identity.ID
	}
	return 0
}
