package middleware

import (
	"net/http"

	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit ограничивает запросы по IP; при недоступности лимитера пропускает
func RateLimit(l ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
