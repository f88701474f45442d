package service

import (
	"context"
	"log/slog"
	"time"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"
	"teamgame_bot/internal/hub"
	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/metrics"
)

// GameServiceInterface - все, что адаптер мессенджера может сделать с сессиями
type GameServiceInterface interface {
	CreateSession(ctx context.Context, chatID int64) (game.Snapshot, error)
	GetSession(ctx context.Context, chatID int64) (game.Snapshot, error)
	ListPlayers(ctx context.Context, chatID int64) ([]domain.Player, error)
	Join(ctx context.Context, chatID int64, player domain.Player) (bool, game.Snapshot, error)
	StartGame(ctx context.Context, chatID int64) (game.Snapshot, error)
	EndGame(ctx context.Context, chatID int64) (game.Snapshot, error)
	SubmitScore(ctx context.Context, chatID int64, teamA, teamB int) (game.Snapshot, error)
	CastVote(ctx context.Context, chatID, voterID, candidateID int64) (game.TallyResult, error)
	Tally(ctx context.Context, chatID int64) (game.TallyResult, error)
	FinishVoting(ctx context.Context, chatID int64) (game.TallyResult, game.Snapshot, error)
	CloseSession(ctx context.Context, chatID int64) error
}

// архив завершенных игр, реализуется repository.MatchRepository
type MatchArchive interface {
	Save(ctx context.Context, m *domain.MatchResult) error
}

// Notifier получает изменения сессий, например лента websocket.
// Вызывается под блокировкой сессии и не должен блокироваться.
type Notifier interface {
	SessionChanged(snap game.Snapshot)
	SessionRemoved(chatID int64)
}

type noopNotifier struct{}

func (noopNotifier) SessionChanged(game.Snapshot) {}
func (noopNotifier) SessionRemoved(int64)         {}

// причины удаления сессии для метрик
const (
	closeReasonClosed  = "closed"
	closeReasonEvicted = "evicted"
	closeReasonAdmin   = "admin"
)

// GameService связывает каталог сессий с метриками, журналом и архивом
type GameService struct {
	hub      *hub.Hub
	metrics  *metrics.Metrics
	archive  MatchArchive
	audit    *AuditService
	notifier Notifier
	log      *slog.Logger
}

// создает новый игровой сервис
func NewGameService(h *hub.Hub, m *metrics.Metrics) *GameService {
	s := &GameService{
		hub:      h,
		metrics:  m,
		audit:    NewAuditService(nil),
		notifier: noopNotifier{},
		log:      logger.With("component", "game_service"),
	}
	h.SetEvictCallback(func(chatID int64) {
		s.metrics.SessionsClosed.WithLabelValues(closeReasonEvicted).Inc()
		s.metrics.ActiveSessions.Set(float64(s.hub.Len()))
		s.notifier.SessionRemoved(chatID)
	})
	return s
}

// SetArchive включает сохранение итогов в БД
func (s *GameService) SetArchive(a MatchArchive) {
	s.archive = a
}

// SetAudit включает журнал действий
func (s *GameService) SetAudit(a *AuditService) {
	s.audit = a
}

// SetNotifier подключает рассылку изменений
func (s *GameService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Sessions - снимки всех сессий для HTTP
func (s *GameService) Sessions() []game.Snapshot {
	return s.hub.List()
}

func (s *GameService) CreateSession(ctx context.Context, chatID int64) (game.Snapshot, error) {
	sess, err := s.hub.Create(chatID)
	if err != nil {
		s.reject("create_session", chatID, err)
		return game.Snapshot{}, err
	}
	s.metrics.SessionsCreated.Inc()
	s.metrics.ActiveSessions.Set(float64(s.hub.Len()))

	snap := sess.Snapshot()
	s.notifier.SessionChanged(snap)
	s.audit.LogSession(ctx, chatID, ActorFrom(ctx), domain.AuditActionSessionCreate, snap.RunID, nil)
	return snap, nil
}

func (s *GameService) GetSession(_ context.Context, chatID int64) (game.Snapshot, error) {
	sess, err := s.hub.Get(chatID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Watch вызывает fn с текущим снимком под блокировкой сессии.
// Все уведомления Notifier об этой сессии придут уже после fn.
func (s *GameService) Watch(chatID int64, fn func(game.Snapshot)) error {
	return s.hub.With(chatID, func(sess *game.Session) error {
		fn(sess.Snapshot())
		return nil
	})
}

func (s *GameService) ListPlayers(_ context.Context, chatID int64) ([]domain.Player, error) {
	var players []domain.Player
	err := s.with(game.OpListPlayers, chatID, func(sess *game.Session) error {
		var err error
		players, err = sess.ListPlayers()
		return err
	})
	return players, err
}

// Join добавляет игрока; joined=false при повторном входе
func (s *GameService) Join(ctx context.Context, chatID int64, player domain.Player) (bool, game.Snapshot, error) {
	var (
		joined bool
		snap   game.Snapshot
	)
	err := s.with(game.OpJoin, chatID, func(sess *game.Session) error {
		var err error
		if joined, err = sess.Join(player); err != nil {
			return err
		}
		snap = sess.Snapshot()
		if joined {
			s.notifier.SessionChanged(snap)
		}
		return nil
	})
	if err != nil {
		return false, game.Snapshot{}, err
	}
	if joined {
		s.audit.LogSession(ctx, chatID, player.ID, domain.AuditActionPlayerJoin, snap.RunID, map[string]interface{}{
			"name": player.DisplayName(),
		})
	}
	return joined, snap, nil
}

func (s *GameService) StartGame(ctx context.Context, chatID int64) (game.Snapshot, error) {
	return s.transition(ctx, game.OpStartGame, domain.AuditActionGameStart, chatID, (*game.Session).StartGame)
}

func (s *GameService) EndGame(ctx context.Context, chatID int64) (game.Snapshot, error) {
	return s.transition(ctx, game.OpEndGame, domain.AuditActionGameEnd, chatID, (*game.Session).EndGame)
}

// SubmitScore сохраняет счет и открывает голосование
func (s *GameService) SubmitScore(ctx context.Context, chatID int64, teamA, teamB int) (game.Snapshot, error) {
	return s.transition(ctx, game.OpSubmitScore, domain.AuditActionScoreSubmit, chatID, func(sess *game.Session) error {
		return sess.SubmitScore(teamA, teamB)
	})
}

// CastVote записывает голос и возвращает актуальный подсчет
func (s *GameService) CastVote(ctx context.Context, chatID, voterID, candidateID int64) (game.TallyResult, error) {
	var (
		res   game.TallyResult
		runID string
	)
	err := s.with(game.OpCastVote, chatID, func(sess *game.Session) error {
		if err := sess.CastVote(voterID, candidateID); err != nil {
			return err
		}
		runID = sess.RunID()
		s.notifier.SessionChanged(sess.Snapshot())
		var err error
		res, err = sess.Tally()
		return err
	})
	if err != nil {
		return game.TallyResult{}, err
	}
	s.metrics.Votes.Inc()
	s.audit.LogVote(ctx, chatID, voterID, candidateID, runID)
	return res, nil
}

func (s *GameService) Tally(_ context.Context, chatID int64) (game.TallyResult, error) {
	var res game.TallyResult
	err := s.with(game.OpTally, chatID, func(sess *game.Session) error {
		var err error
		res, err = sess.Tally()
		return err
	})
	return res, err
}

// FinishVoting закрывает голосование и архивирует игру.
// Сбой архива не отменяет закрытие, только логируется.
func (s *GameService) FinishVoting(ctx context.Context, chatID int64) (game.TallyResult, game.Snapshot, error) {
	var (
		res  game.TallyResult
		snap game.Snapshot
	)
	err := s.with(game.OpFinishVoting, chatID, func(sess *game.Session) error {
		var err error
		if res, err = sess.FinishVoting(); err != nil {
			return err
		}
		snap = sess.Snapshot()
		s.notifier.SessionChanged(snap)
		return nil
	})
	if err != nil {
		return game.TallyResult{}, game.Snapshot{}, err
	}
	s.metrics.ObserveTransition(domain.StateClosed)

	s.audit.LogSession(ctx, chatID, ActorFrom(ctx), domain.AuditActionVotingFinish, snap.RunID, map[string]interface{}{
		"leaders": res.Leaders,
		"votes":   res.Total,
	})
	s.archiveMatch(ctx, snap, res)
	return res, snap, nil
}

// CloseSession удаляет сессию чата; отсутствие сессии - не ошибка
func (s *GameService) CloseSession(ctx context.Context, chatID int64) error {
	s.remove(ctx, chatID, closeReasonClosed)
	return nil
}

// AdminClose - принудительное закрытие через HTTP API
func (s *GameService) AdminClose(ctx context.Context, adminID, chatID int64) bool {
	removed := s.remove(WithActor(ctx, adminID), chatID, closeReasonAdmin)
	if removed {
		s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminClose, chatID, nil)
	}
	return removed
}

func (s *GameService) remove(ctx context.Context, chatID int64, reason string) bool {
	var runID string
	if sess, err := s.hub.Get(chatID); err == nil {
		runID = sess.RunID()
	}
	if !s.hub.Remove(chatID) {
		return false
	}
	s.metrics.SessionsClosed.WithLabelValues(reason).Inc()
	s.metrics.ActiveSessions.Set(float64(s.hub.Len()))
	s.notifier.SessionRemoved(chatID)
	s.audit.LogSession(ctx, chatID, ActorFrom(ctx), domain.AuditActionSessionClose, runID, map[string]interface{}{
		"reason": reason,
	})
	return true
}

// переход автомата с метрикой и записью в журнал
func (s *GameService) transition(ctx context.Context, op, action string, chatID int64, fn func(*game.Session) error) (game.Snapshot, error) {
	var snap game.Snapshot
	err := s.with(op, chatID, func(sess *game.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		snap = sess.Snapshot()
		s.notifier.SessionChanged(snap)
		return nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	s.metrics.ObserveTransition(snap.State)
	s.audit.LogSession(ctx, chatID, ActorFrom(ctx), action, snap.RunID, map[string]interface{}{
		"state": snap.State.String(),
	})
	return snap, nil
}

// выполняет операцию под блокировкой сессии и учитывает отказы
func (s *GameService) with(op string, chatID int64, fn func(*game.Session) error) error {
	err := s.hub.With(chatID, fn)
	if err != nil {
		s.reject(op, chatID, err)
	}
	return err
}

func (s *GameService) reject(op string, chatID int64, err error) {
	s.metrics.ObserveRejected(op, err)
	s.log.Debug("action rejected", "op", op, "chat_id", chatID, "error", err)
}

func (s *GameService) archiveMatch(ctx context.Context, snap game.Snapshot, res game.TallyResult) {
	if s.archive == nil || snap.Score == nil {
		return
	}
	m := &domain.MatchResult{
		ID:         snap.RunID,
		ChatID:     snap.ChatID,
		Players:    snap.Players,
		Score:      *snap.Score,
		VoteCounts: res.Counts,
		MVPs:       res.Leaders,
		StartedAt:  snap.CreatedAt,
		ClosedAt:   snap.UpdatedAt,
	}
	if m.ClosedAt.IsZero() {
		m.ClosedAt = time.Now()
	}

	if err := s.archive.Save(ctx, m); err != nil {
		s.log.Error("failed to archive match", "chat_id", snap.ChatID, "run_id", snap.RunID, "error", err)
		return
	}
	s.log.Info("match archived", "chat_id", snap.ChatID, "run_id", snap.RunID, "mvps", res.Leaders)
}

// SessionsByState - число сессий в каждом состоянии для health
func (s *GameService) SessionsByState() map[domain.GameState]int {
	return s.hub.CountByState()
}
