package domain

// GameState - фаза жизненного цикла игровой сессии
type GameState int

const (
	StateWaiting GameState = iota // набор игроков
	StateInGame                   // состав зафиксирован, идет игра
	StateScoring                  // ждем итоговый счет
	StateVoting                   // голосование за MVP
	StateClosed                   // терминальное состояние
)

func (s GameState) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateInGame:
		return "IN_GAME"
	case StateScoring:
		return "SCORING"
	case StateVoting:
		return "VOTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Next возвращает единственное допустимое следующее состояние.
// Для CLOSED второй результат false.
func (s GameState) Next() (GameState, bool) {
	switch s {
	case StateWaiting:
		return StateInGame, true
	case StateInGame:
		return StateScoring, true
	case StateScoring:
		return StateVoting, true
	case StateVoting:
		return StateClosed, true
	case StateClosed:
		return StateClosed, false
	default:
		return s, false
	}
}

// CanTransitionTo проверяет, что переход идет по документированному ребру
func (s GameState) CanTransitionTo(target GameState) bool {
	next, ok := s.Next()
	return ok && next == target
}

// Active - сессия еще не закрыта
func (s GameState) Active() bool {
	return s != StateClosed
}

func (s GameState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
