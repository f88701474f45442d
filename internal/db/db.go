package db

import (
	"context"
	"fmt"
	"time"

	"teamgame_bot/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	id          UUID PRIMARY KEY,
	chat_id     BIGINT NOT NULL,
	players     JSONB NOT NULL,
	team_a      INT NOT NULL,
	team_b      INT NOT NULL,
	vote_counts JSONB NOT NULL DEFAULT '{}',
	mvp_ids     BIGINT[] NOT NULL DEFAULT '{}',
	started_at  TIMESTAMPTZ NOT NULL,
	closed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_chat_idx ON match_results (chat_id, closed_at DESC);

CREATE TABLE IF NOT EXISTS audit_logs (
	id         BIGSERIAL PRIMARY KEY,
	chat_id    BIGINT NOT NULL,
	user_id    BIGINT NOT NULL DEFAULT 0,
	action     TEXT NOT NULL,
	category   TEXT NOT NULL,
	details    JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_logs_chat_idx ON audit_logs (chat_id, created_at DESC);
`

// Connect открывает пул соединений и создает таблицы, если их нет
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("connected to postgres", "max_conns", cfg.MaxConns)
	return pool, nil
}
