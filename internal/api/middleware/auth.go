package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"rapor-paud/backend/pkg/jwt"
	"rapor-paud/backend/pkg/response"
)

// TokenVerifier 校验令牌签名、有效期与黑名单
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

// JWTAuth 编辑者认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
