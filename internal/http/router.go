package http

import (
	"teamgame_bot/internal/http/handlers"
	"teamgame_bot/internal/http/middleware"
	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/ratelimit"
	"teamgame_bot/internal/service"
	"teamgame_bot/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps - зависимости HTTP слоя. Nil поля отключают соответствующие маршруты.
type RouterDeps struct {
	Service  handlers.SessionService
	Matches  handlers.MatchHistory
	Audit    handlers.AuditReader
	Tokens   *service.AdminTokens
	BotToken string
	Limiter  ratelimit.Limiter
	Gatherer prometheus.Gatherer
	Version  string

	Feed          *ws.Feed
	AllowedOrigin string
}

// RegisterRoutes подключает маршруты API к gin
func RegisterRoutes(r *gin.Engine, d RouterDeps) {
	h := handlers.NewHandler(d.Service, d.Matches, d.Version)
	h.Audit = d.Audit
	h.Tokens = d.Tokens
	h.Feed = d.Feed
	h.AllowedOrigin = d.AllowedOrigin

	r.GET("/healthz", h.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter))
	}

	// данные сессий видят только их игроки, вход через init_data Mini App
	if d.BotToken != "" {
		player := api.Group("", middleware.TelegramInitData(d.BotToken))
		player.GET("/sessions", h.ListSessions)
		player.GET("/sessions/:chat_id", h.GetSession)
		player.GET("/sessions/:chat_id/history", h.MatchHistory)
		if d.Feed != nil {
			player.GET("/sessions/:chat_id/ws", h.SessionFeed)
		}
		player.GET("/me/sessions", h.MySessions)
	} else {
		logger.Warn("BOT_TOKEN not set - player routes disabled")
	}

	if d.Tokens == nil {
		logger.Warn("ADMIN_JWT_SECRET not set - admin routes disabled")
		return
	}
	if d.BotToken != "" {
		api.POST("/admin/token", middleware.TelegramInitData(d.BotToken), h.IssueAdminToken)
	}
	admin := api.Group("/admin", middleware.AdminJWT(d.Tokens))
	admin.GET("/sessions", h.AdminListSessions)
	admin.DELETE("/sessions/:chat_id", h.AdminCloseSession)
	admin.GET("/sessions/:chat_id/audit", h.SessionAudit)
	admin.GET("/audit", h.RecentAudit)
}
