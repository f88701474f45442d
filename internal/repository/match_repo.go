package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"teamgame_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// архив завершенных игр
type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// сохраняет итог игры, повторное сохранение того же ID игнорируется
func (r *MatchRepository) Save(ctx context.Context, m *domain.MatchResult) error {
	playersJSON, err := json.Marshal(m.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	votesJSON, err := json.Marshal(encodeVoteCounts(m.VoteCounts))
	if err != nil {
		return fmt.Errorf("marshal votes: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO match_results (id, chat_id, players, team_a, team_b, vote_counts, mvp_ids, started_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, m.ID, m.ChatID, playersJSON, m.Score.TeamA, m.Score.TeamB, votesJSON, m.MVPs, m.StartedAt, m.ClosedAt)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}

// последние игры чата
func (r *MatchRepository) GetByChatID(ctx context.Context, chatID int64, limit int) ([]*domain.MatchResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, players, team_a, team_b, vote_counts, mvp_ids, started_at, closed_at
		FROM match_results
		WHERE chat_id = $1
		ORDER BY closed_at DESC
		LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows)
}

// сколько раз игрок становился MVP в чате
func (r *MatchRepository) CountMVPAwards(ctx context.Context, chatID, playerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM match_results
		WHERE chat_id = $1 AND $2 = ANY(mvp_ids)
	`, chatID, playerID).Scan(&n)
	return n, err
}

func scanMatches(rows pgx.Rows) ([]*domain.MatchResult, error) {
	var out []*domain.MatchResult
	for rows.Next() {
		var m domain.MatchResult
		var playersJSON, votesJSON []byte
		if err := rows.Scan(&m.ID, &m.ChatID, &playersJSON, &m.Score.TeamA, &m.Score.TeamB,
			&votesJSON, &m.MVPs, &m.StartedAt, &m.ClosedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playersJSON, &m.Players); err != nil {
			return nil, fmt.Errorf("decode players of %s: %w", m.ID, err)
		}
		var raw map[string]int
		if err := json.Unmarshal(votesJSON, &raw); err != nil {
			return nil, fmt.Errorf("decode votes of %s: %w", m.ID, err)
		}
		m.VoteCounts = decodeVoteCounts(raw)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ключи jsonb - строки
func encodeVoteCounts(counts map[int64]int) map[string]int {
	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[strconv.FormatInt(id, 10)] = n
	}
	return out
}

func decodeVoteCounts(raw map[string]int) map[int64]int {
	out := make(map[int64]int, len(raw))
	for k, n := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = n
	}
	return out
}
