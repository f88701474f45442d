package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"teamgame_bot/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	AppPort  string
	LogLevel string
	LogJSON  bool

	AllowedOrigin string

	DatabaseURL string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	MinPlayers          int
	VotersMustBePlayers bool
	SessionTTL          time.Duration
	CleanupInterval     time.Duration

	AdminJWTSecret   string
	AdminTelegramIDs []int64
}

// Load читает .env (если есть) и переменные окружения
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using system variables")
	}
	return FromEnv()
}

// FromEnv собирает конфиг только из окружения
func FromEnv() *Config {
	return &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_FORMAT") == "json",

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 30),

		MinPlayers:          getInt("MIN_PLAYERS", 0),
		VotersMustBePlayers: getBool("VOTERS_MUST_BE_PLAYERS", false),
		SessionTTL:          getDuration("SESSION_TTL", 6*time.Hour),
		CleanupInterval:     getDuration("CLEANUP_INTERVAL", 10*time.Minute),

		AdminJWTSecret:   os.Getenv("ADMIN_JWT_SECRET"),
		AdminTelegramIDs: parseIDs(os.Getenv("ADMIN_TELEGRAM_IDS")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("invalid integer in env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid bool in env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration in env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

// список ID через запятую, мусор пропускается
func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
