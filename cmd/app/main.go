package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamgame_bot/internal/bot"
	"teamgame_bot/internal/config"
	"teamgame_bot/internal/db"
	"teamgame_bot/internal/game"
	httpServer "teamgame_bot/internal/http"
	"teamgame_bot/internal/hub"
	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/metrics"
	"teamgame_bot/internal/ratelimit"
	"teamgame_bot/internal/repository"
	"teamgame_bot/internal/service"
	"teamgame_bot/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	// Инициализация структурированного логгера
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessions := hub.NewHub(game.Options{
		MinPlayers:          cfg.MinPlayers,
		VotersMustBePlayers: cfg.VotersMustBePlayers,
	})
	gameService := service.NewGameService(sessions, m)

	// лента изменений сессий для Mini App
	feed := ws.NewFeed()
	gameService.SetNotifier(feed)

	deps := httpServer.RouterDeps{
		Service:  gameService,
		BotToken: cfg.BotToken,
		Gatherer: reg,
		Version:  Version,

		Feed:          feed,
		AllowedOrigin: cfg.AllowedOrigin,
	}

	// БД необязательна: без нее нет архива матчей и журнала
	if cfg.DatabaseURL != "" {
		dbPool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", "error", err)
		}
		defer dbPool.Close()

		matches := repository.NewMatchRepository(dbPool)
		audit := repository.NewAuditRepository(dbPool)
		gameService.SetArchive(matches)
		gameService.SetAudit(service.NewAuditService(audit))
		deps.Matches = matches
		deps.Audit = audit
		log.Info("match archive enabled")
	} else {
		log.Warn("DATABASE_URL not set - match archive and audit log disabled")
	}

	limiter := newLimiter(ctx, cfg)
	deps.Limiter = limiter

	if cfg.AdminJWTSecret != "" {
		deps.Tokens = service.NewAdminTokens(cfg.AdminJWTSecret, cfg.AdminTelegramIDs)
	}

	sessions.StartCleanup(ctx, cfg.CleanupInterval, cfg.SessionTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, deps)

	// Запуск бота ПЕРЕД HTTP сервером
	var gameBot *bot.Bot
	if cfg.BotToken != "" {
		api, err := bot.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Fatal("failed to start bot", "error", err)
		}
		gameBot = bot.NewBot(api, gameService, limiter, m)
		go gameBot.Start(ctx)
		log.Info("bot started")
	} else {
		log.Warn("BOT_TOKEN not set - running HTTP API only")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Плавная остановка бота
	if gameBot != nil {
		gameBot.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	if closer, ok := limiter.(*ratelimit.RedisLimiter); ok {
		_ = closer.Close()
	}

	log.Info("server exited")
}

// Redis, если задан и доступен, иначе лимит в памяти процесса
func newLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if cfg.RateLimitPerMinute <= 0 {
		return ratelimit.Unlimited{}
	}
	if cfg.RedisAddr != "" {
		rl := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RateLimitPerMinute, time.Minute)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rl.Ping(pingCtx)
		if err == nil {
			logger.Info("redis rate limiter enabled", "addr", cfg.RedisAddr, "per_minute", cfg.RateLimitPerMinute)
			return rl
		}
		logger.Warn("redis unavailable, falling back to in-memory rate limiter", "addr", cfg.RedisAddr, "error", err)
		_ = rl.Close()
	}
	return ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
}
