package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "MIN_PLAYERS", "SESSION_TTL", "RATE_LIMIT_PER_MINUTE", "VOTERS_MUST_BE_PLAYERS", "ADMIN_TELEGRAM_IDS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 0, cfg.MinPlayers)
	assert.Equal(t, 6*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.False(t, cfg.VotersMustBePlayers)
	assert.Empty(t, cfg.AdminTelegramIDs)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MIN_PLAYERS", "4")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("VOTERS_MUST_BE_PLAYERS", "true")
	t.Setenv("ADMIN_TELEGRAM_IDS", "1, 2,x,3")
	t.Setenv("REDIS_DB", "nope")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 4, cfg.MinPlayers)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.VotersMustBePlayers)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminTelegramIDs)
	assert.Equal(t, 0, cfg.RedisDB)
}
