package handlers

import (
	"net/http"

	"teamgame_bot/internal/game"
	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SessionFeed - websocket с обновлениями сессии чата, только для ее игроков.
// Первым сообщением приходит текущий снимок.
func (h *Handler) SessionFeed(c *gin.Context) {
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	snap, ok := h.sessionFor(c, player.ID)
	if !ok {
		return
	}
	chatID := snap.ChatID

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	// обновление вебсокета
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "chat_id", chatID, "error", err)
		return
	}

	// подписка под блокировкой сессии: изменения не обгонят первый снимок
	client := ws.NewClient(chatID, conn, h.Feed)
	var startErr error
	err = h.Service.Watch(chatID, func(snap game.Snapshot) {
		startErr = client.Start(snap)
	})
	if err == nil {
		err = startErr
	}
	if err != nil {
		logger.Warn("ws feed not started", "chat_id", chatID, "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
		_ = conn.Close()
		return
	}

	go client.Run()
}
