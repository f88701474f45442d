package handlers

import (
	"errors"
	"net/http"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

// состояние сервиса и число сессий по состояниям
func (h *Handler) Health(c *gin.Context) {
	byState := h.Service.SessionsByState()
	total := 0
	for _, n := range byState {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  h.Version,
		"sessions": total,
		"by_state": byState,
	})
}

// сессии, в составе которых есть текущий пользователь Mini App
func (h *Handler) ListSessions(c *gin.Context) {
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	sessions := h.memberSessions(player.ID)
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// сессия чата, только для ее игроков
func (h *Handler) GetSession(c *gin.Context) {
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	snap, ok := h.sessionFor(c, player.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

// то же, что ListSessions, вместе с профилем из init_data
func (h *Handler) MySessions(c *gin.Context) {
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":   player,
		"sessions": h.memberSessions(player.ID),
	})
}

// архив матчей чата: только игры с участием пользователя и его число MVP
func (h *Handler) MatchHistory(c *gin.Context) {
	if h.Matches == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match history is disabled"})
		return
	}
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	chatID, ok := chatIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	ctx := c.Request.Context()
	matches, err := h.Matches.GetByChatID(ctx, chatID, limitParam(c, defaultHistoryLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	mine := make([]*domain.MatchResult, 0, len(matches))
	for _, m := range matches {
		if isMember(m.Players, player.ID) {
			mine = append(mine, m)
		}
	}

	awards, err := h.Matches.CountMVPAwards(ctx, chatID, player.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matches":    mine,
		"mvp_awards": awards,
	})
}

// все сессии целиком, для админки
func (h *Handler) AdminListSessions(c *gin.Context) {
	sessions := h.Service.Sessions()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// принудительное закрытие сессии администратором
func (h *Handler) AdminCloseSession(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	chatID, ok := chatIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	removed := h.Service.AdminClose(c.Request.Context(), adminID, chatID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}

func (h *Handler) memberSessions(playerID int64) []game.Snapshot {
	mine := make([]game.Snapshot, 0)
	for _, snap := range h.Service.Sessions() {
		if isMember(snap.Players, playerID) {
			mine = append(mine, snap)
		}
	}
	return mine
}

// снимок сессии из :chat_id, если пользователь в ней играет; иначе пишет ошибку
func (h *Handler) sessionFor(c *gin.Context, playerID int64) (game.Snapshot, bool) {
	chatID, ok := chatIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return game.Snapshot{}, false
	}

	snap, err := h.Service.GetSession(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return game.Snapshot{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return game.Snapshot{}, false
	}
	if !isMember(snap.Players, playerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a player of this session"})
		return game.Snapshot{}, false
	}
	return snap, true
}
