package middleware

import (
	"net/http"
	"strings"

	"teamgame_bot/internal/service"

	"github.com/gin-gonic/gin"
)

// ключи контекста gin
const (
	AdminIDKey = "admin_id"
	PlayerKey  = "player"
)

// AdminJWT пропускает только запросы с валидным Bearer токеном администратора
func AdminJWT(tokens *service.AdminTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		adminID, err := tokens.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(AdminIDKey, adminID)
		c.Next()
	}
}

// TelegramInitData проверяет подпись init_data Mini App и кладет игрока в контекст
func TelegramInitData(botToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		initData := c.GetHeader("X-Telegram-Init-Data")
		if initData == "" {
			initData = c.Query("init_data")
		}
		if initData == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "init_data required"})
			return
		}

		values, ok := service.ValidateTelegramInitData(initData, botToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init_data"})
			return
		}
		player, err := service.InitDataPlayer(values)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(PlayerKey, player)
		c.Next()
	}
}
