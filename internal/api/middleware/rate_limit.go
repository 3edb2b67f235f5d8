package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"rapor-paud/backend/pkg/redis"
	"rapor-paud/backend/pkg/response"
)

// RateLimit 基于 Redis 固定窗口的速率限制中间件（用于登录）
// limit: 窗口内允许的最大请求数
// rdb 为 nil（本地使用 sqlite 槽位）或 limit <= 0 时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
