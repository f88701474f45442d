package handlers

import (
	"net/http"
	"time"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	adminTokenTTL     = 12 * time.Hour
	defaultAuditLimit = 50
)

// IssueAdminToken - выдача JWT админу, вошедшему через Mini App
func (h *Handler) IssueAdminToken(c *gin.Context) {
	player, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !h.Tokens.IsAdmin(player.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an admin"})
		return
	}

	token, err := h.Tokens.Issue(player.ID, adminTokenTTL)
	if err != nil {
		logger.Error("failed to issue admin token", "admin_id", player.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	logger.Info("admin token issued", "admin_id", player.ID)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": time.Now().Add(adminTokenTTL).UTC(),
	})
}

// журнал действий по чату
func (h *Handler) SessionAudit(c *gin.Context) {
	if h.Audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log is disabled"})
		return
	}
	chatID, ok := chatIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	logs, err := h.Audit.GetByChatID(c.Request.Context(), chatID, limitParam(c, defaultAuditLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	writeLogs(c, logs)
}

// последние записи журнала по всем чатам
func (h *Handler) RecentAudit(c *gin.Context) {
	if h.Audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log is disabled"})
		return
	}

	logs, err := h.Audit.GetRecent(c.Request.Context(), limitParam(c, defaultAuditLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	writeLogs(c, logs)
}

func writeLogs(c *gin.Context, logs []*domain.AuditLog) {
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
