package game

import "teamgame_bot/internal/domain"

// Roster - упорядоченный список игроков без повторов
type Roster struct {
	players []domain.Player
	index   map[int64]int // id -> позиция в players
}

func NewRoster() *Roster {
	return &Roster{index: make(map[int64]int)}
}

// добавляет игрока, повторное добавление того же ID ничего не меняет
func (r *Roster) Add(p domain.Player) bool {
	if _, ok := r.index[p.ID]; ok {
		return false
	}
	r.index[p.ID] = len(r.players)
	r.players = append(r.players, p)
	return true
}

func (r *Roster) Contains(id int64) bool {
	_, ok := r.index[id]
	return ok
}

// позиция игрока в порядке присоединения
func (r *Roster) Position(id int64) (int, bool) {
	pos, ok := r.index[id]
	return pos, ok
}

func (r *Roster) Get(id int64) (domain.Player, bool) {
	pos, ok := r.index[id]
	if !ok {
		return domain.Player{}, false
	}
	return r.players[pos], true
}

func (r *Roster) Len() int {
	return len(r.players)
}

// копия списка, вызывающий может ее менять
func (r *Roster) Players() []domain.Player {
	out := make([]domain.Player, len(r.players))
	copy(out, r.players)
	return out
}

func (r *Roster) IDs() []int64 {
	ids := make([]int64, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}
