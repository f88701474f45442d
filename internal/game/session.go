package game

import (
	"fmt"
	"sync"
	"time"

	"teamgame_bot/internal/domain"

	"github.com/google/uuid"
)

// Session - игровая сессия одного чата.
// Каждая операция сначала проверяет состояние и при отказе ничего не меняет.
type Session struct {
	chatID    int64
	runID     string
	state     domain.GameState
	roster    *Roster
	score     *domain.TeamScore
	votes     *VoteTally
	opts      Options
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
	mu        sync.RWMutex
}

// создает новую сессию в состоянии WAITING
func NewSession(chatID int64, opts Options) *Session {
	return newSessionAt(chatID, opts, time.Now)
}

func newSessionAt(chatID int64, opts Options, now func() time.Time) *Session {
	ts := now()
	return &Session{
		chatID:    chatID,
		runID:     uuid.NewString(),
		state:     domain.StateWaiting,
		roster:    NewRoster(),
		votes:     NewVoteTally(),
		opts:      opts,
		createdAt: ts,
		updatedAt: ts,
		now:       now,
	}
}

func (s *Session) ChatID() int64 {
	return s.chatID
}

func (s *Session) RunID() string {
	return s.runID
}

func (s *Session) State() domain.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// время последнего изменения, используется при очистке старых сессий
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Join добавляет игрока. Повторный вход того же игрока - не ошибка, joined=false.
func (s *Session) Join(p domain.Player) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpJoin, domain.StateWaiting); err != nil {
		return false, err
	}
	joined := s.roster.Add(p)
	if joined {
		s.touch()
	}
	return joined, nil
}

// копия состава в порядке присоединения
func (s *Session) Players() []domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Players()
}

// ListPlayers отдает состав только пока идет набор
func (s *Session) ListPlayers() ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.require(OpListPlayers, domain.StateWaiting); err != nil {
		return nil, err
	}
	return s.roster.Players(), nil
}

func (s *Session) Player(id int64) (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Get(id)
}

// StartGame фиксирует состав: WAITING -> IN_GAME
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpStartGame, domain.StateWaiting); err != nil {
		return err
	}
	if s.roster.Len() < s.opts.MinPlayers {
		return &domain.ValidationError{
			Field:  "players",
			Reason: fmt.Sprintf("need at least %d players, have %d", s.opts.MinPlayers, s.roster.Len()),
		}
	}
	s.advance(domain.StateInGame)
	return nil
}

// EndGame завершает игру и переводит в ожидание счета: IN_GAME -> SCORING
func (s *Session) EndGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpEndGame, domain.StateInGame); err != nil {
		return err
	}
	s.advance(domain.StateScoring)
	return nil
}

// SubmitScore сохраняет счет и сразу открывает голосование: SCORING -> VOTING.
// Отрицательный счет отклоняется, сессия остается в SCORING.
func (s *Session) SubmitScore(teamA, teamB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpSubmitScore, domain.StateScoring); err != nil {
		return err
	}
	if teamA < 0 {
		return &domain.ValidationError{Field: domain.TeamA, Reason: "score must be non-negative"}
	}
	if teamB < 0 {
		return &domain.ValidationError{Field: domain.TeamB, Reason: "score must be non-negative"}
	}

	s.score = &domain.TeamScore{TeamA: teamA, TeamB: teamB}
	s.votes = NewVoteTally()
	s.advance(domain.StateVoting)
	return nil
}

// Score возвращает счет, если он уже внесен
func (s *Session) Score() (domain.TeamScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.score == nil {
		return domain.TeamScore{}, false
	}
	return *s.score, true
}

// CastVote записывает голос избирателя, повторный голос заменяет прежний
func (s *Session) CastVote(voterID, candidateID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpCastVote, domain.StateVoting); err != nil {
		return err
	}
	if !s.roster.Contains(candidateID) {
		return &domain.UnknownCandidateError{CandidateID: candidateID}
	}
	if s.opts.VotersMustBePlayers && !s.roster.Contains(voterID) {
		return &domain.ValidationError{Field: "voter", Reason: "only players of this game can vote"}
	}
	if s.votes.Cast(voterID, candidateID) {
		s.touch()
	}
	return nil
}

// Tally - подсчет голосов, доступен во время голосования и после закрытия
func (s *Session) Tally() (TallyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.require(OpTally, domain.StateVoting, domain.StateClosed); err != nil {
		return TallyResult{}, err
	}
	return s.votes.Result(s.roster.IDs()), nil
}

// FinishVoting закрывает голосование и возвращает итог: VOTING -> CLOSED
func (s *Session) FinishVoting() (TallyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(OpFinishVoting, domain.StateVoting); err != nil {
		return TallyResult{}, err
	}
	s.advance(domain.StateClosed)
	return s.votes.Result(s.roster.IDs()), nil
}

// Snapshot - неизменяемая копия для отрисовки и архива
type Snapshot struct {
	ChatID    int64             `json:"chat_id"`
	RunID     string            `json:"run_id"`
	State     domain.GameState  `json:"state"`
	Players   []domain.Player   `json:"players"`
	Score     *domain.TeamScore `json:"score,omitempty"`
	Votes     map[int64]int64   `json:"votes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ChatID:    s.chatID,
		RunID:     s.runID,
		State:     s.state,
		Players:   s.roster.Players(),
		Votes:     s.votes.Votes(),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.score != nil {
		score := *s.score
		snap.Score = &score
	}
	return snap
}

// проверка состояния, вызывать под блокировкой
func (s *Session) require(op string, allowed ...domain.GameState) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return &domain.InvalidStateError{Op: op, State: s.state}
}

// переход по ребру автомата, вызывать под блокировкой после require
func (s *Session) advance(target domain.GameState) {
	if !s.state.CanTransitionTo(target) {
		panic(fmt.Sprintf("game: illegal transition %s -> %s", s.state, target))
	}
	s.state = target
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}
