package domain

import "time"

// Журнал действий в игровых сессиях
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	ChatID    int64                  `db:"chat_id" json:"chat_id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории действий
const (
	AuditCategorySession = "session"
	AuditCategoryVote    = "vote"
	AuditCategoryAdmin   = "admin"
)

const (
	// Жизненный цикл сессии
	AuditActionSessionCreate = "session_create"
	AuditActionPlayerJoin    = "player_join"
	AuditActionGameStart     = "game_start"
	AuditActionGameEnd       = "game_end"
	AuditActionScoreSubmit   = "score_submit"
	AuditActionVotingFinish  = "voting_finish"
	AuditActionSessionClose  = "session_close"

	// Голосование
	AuditActionVoteCast = "vote_cast"

	// Действия админов
	AuditActionAdminClose = "admin_close"
)
