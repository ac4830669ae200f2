package middleware

import (
	"crypto/subtle"

	"avdb-go/internal/api/response"
	"avdb-go/internal/config"

	"github.com/gin-gonic/gin"
)

// CronAuthRequired 定时任务端点认证中间件
// 要求 Authorization: Bearer <cron secret>，密钥未配置时拒绝所有请求
func CronAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.GetCron().Secret
		if secret == "" {
			response.Unauthorized(c, "定时任务密钥未配置")
			c.Abort()
			return
		}

		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少定时任务令牌")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			response.Unauthorized(c, "定时任务令牌无效")
			c.Abort()
			return
		}

		c.Next()
	}
}
