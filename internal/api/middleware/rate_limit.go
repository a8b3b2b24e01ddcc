package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mapioca/beespo-mvp-sub006/pkg/redis"
	"github.com/mapioca/beespo-mvp-sub006/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的单 IP 速率限制中间件，
// 用于登录/注册等防爆破场景。rdb 为 nil 或检查出错时降级放行，
// 与 JWTAuth 的黑名单降级策略一致。
// 注意：邀请码校验/消费接口不挂此中间件——那条链路的限流在
// Service 层执行，命中时对外与"邀请码无效"同一口径。
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("http:rl:%s:%s", c.ClientIP(), route)

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
