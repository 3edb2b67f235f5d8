package handler

import (
	"github.com/gin-gonic/gin"

	"rapor-paud/backend/pkg/jwt"
	"rapor-paud/backend/pkg/response"
)

// ClaimsKey JWT 中间件写入上下文的键
const ClaimsKey = "claims"

// MustGetClaims 从 Gin 上下文中安全提取令牌声明。
// 中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
