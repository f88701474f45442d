// Package game содержит движок игровой сессии чата: состав игроков,
// голосование за MVP и конечный автомат WAITING -> IN_GAME -> SCORING -> VOTING -> CLOSED.
package game

// Имена операций, попадают в InvalidStateError.Op
const (
	OpJoin         = "join"
	OpListPlayers  = "list_players"
	OpStartGame    = "start_game"
	OpEndGame      = "end_game"
	OpSubmitScore  = "submit_score"
	OpCastVote     = "cast_vote"
	OpTally        = "tally"
	OpFinishVoting = "finish_voting"
)

// Настройки правил сессии
type Options struct {
	// минимальное число игроков для старта, 0 - без ограничения
	MinPlayers int
	// голосовать могут только участники игры
	VotersMustBePlayers bool
}

func DefaultOptions() Options {
	return Options{}
}
