package domain

import "time"

// Архивная запись завершенной игры
type MatchResult struct {
	ID         string        `db:"id" json:"id"`
	ChatID     int64         `db:"chat_id" json:"chat_id"`
	Players    []Player      `db:"players" json:"players"`
	Score      TeamScore     `db:"score" json:"score"`
	VoteCounts map[int64]int `db:"vote_counts" json:"vote_counts"`
	MVPs       []int64       `db:"mvp_ids" json:"mvp_ids"`
	StartedAt  time.Time     `db:"started_at" json:"started_at"`
	ClosedAt   time.Time     `db:"closed_at" json:"closed_at"`
}
