package handlers

import (
	"context"
	"strconv"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"
	"teamgame_bot/internal/http/middleware"
	"teamgame_bot/internal/service"
	"teamgame_bot/internal/ws"

	"github.com/gin-gonic/gin"
)

// SessionService - то, что HTTP слой читает из игрового сервиса
type SessionService interface {
	GetSession(ctx context.Context, chatID int64) (game.Snapshot, error)
	Sessions() []game.Snapshot
	SessionsByState() map[domain.GameState]int
	Watch(chatID int64, fn func(game.Snapshot)) error
	AdminClose(ctx context.Context, adminID, chatID int64) bool
}

// MatchHistory - архив сыгранных матчей, может отсутствовать без БД
type MatchHistory interface {
	GetByChatID(ctx context.Context, chatID int64, limit int) ([]*domain.MatchResult, error)
	CountMVPAwards(ctx context.Context, chatID, playerID int64) (int, error)
}

// AuditReader - чтение журнала действий для админки
type AuditReader interface {
	GetByChatID(ctx context.Context, chatID int64, limit int) ([]*domain.AuditLog, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

type Handler struct {
	Service SessionService
	Matches MatchHistory
	Audit   AuditReader
	Tokens  *service.AdminTokens
	Version string

	Feed          *ws.Feed
	AllowedOrigin string
}

func NewHandler(svc SessionService, matches MatchHistory, version string) *Handler {
	return &Handler{
		Service: svc,
		Matches: matches,
		Version: version,
	}
}

func chatIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	return id, err == nil
}

func getAdminID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.AdminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func getPlayer(c *gin.Context) (domain.Player, bool) {
	v, ok := c.Get(middleware.PlayerKey)
	if !ok {
		return domain.Player{}, false
	}
	p, ok := v.(domain.Player)
	return p, ok
}

// limit из query в пределах 1..100
func limitParam(c *gin.Context, fallback int) int {
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			return n
		}
	}
	return fallback
}

func isMember(players []domain.Player, playerID int64) bool {
	for _, p := range players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
