package hub

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"
	"teamgame_bot/internal/logger"
)

// запись каталога: сессия и ее собственная блокировка
type entry struct {
	mu      sync.Mutex
	session *game.Session
}

// Hub - каталог сессий: не больше одной сессии на чат.
// Мутации одной сессии сериализуются через With, разные чаты работают параллельно.
type Hub struct {
	sessions map[int64]*entry
	opts     game.Options
	mu       sync.RWMutex
	log      *slog.Logger

	// вызывается после удаления сессии при очистке
	onEvict func(chatID int64)
}

func NewHub(opts game.Options) *Hub {
	return &Hub{
		sessions: make(map[int64]*entry),
		opts:     opts,
		log:      logger.With("component", "hub"),
	}
}

// SetEvictCallback устанавливает callback для уведомлений об удалении устаревших сессий
func (h *Hub) SetEvictCallback(cb func(chatID int64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvict = cb
}

// Create создает сессию для чата. Активная сессия не перезаписывается,
// закрытая (CLOSED) заменяется новой.
func (h *Hub) Create(chatID int64) (*game.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.sessions[chatID]; ok {
		// блокировку записи не берем: With держит ее и ждет h.mu
		state := e.session.State()
		if state.Active() {
			return nil, &domain.AlreadyExistsError{ChatID: chatID, State: state}
		}
		h.log.Debug("replacing closed session", "chat_id", chatID, "run_id", e.session.RunID())
	}

	s := game.NewSession(chatID, h.opts)
	h.sessions[chatID] = &entry{session: s}
	h.log.Info("session created", "chat_id", chatID, "run_id", s.RunID(), "sessions", len(h.sessions))
	return s, nil
}

// Get возвращает сессию чата или NotFoundError
func (h *Hub) Get(chatID int64) (*game.Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.sessions[chatID]
	if !ok {
		return nil, &domain.NotFoundError{ChatID: chatID}
	}
	return e.session, nil
}

// With выполняет fn под блокировкой сессии чата
func (h *Hub) With(chatID int64, fn func(s *game.Session) error) error {
	h.mu.RLock()
	e, ok := h.sessions[chatID]
	h.mu.RUnlock()
	if !ok {
		return &domain.NotFoundError{ChatID: chatID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// сессию могли удалить или заменить пока ждали блокировку
	h.mu.RLock()
	current, ok := h.sessions[chatID]
	h.mu.RUnlock()
	if !ok || current != e {
		return &domain.NotFoundError{ChatID: chatID}
	}

	return fn(e.session)
}

// Remove удаляет сессию, отсутствие сессии - не ошибка
func (h *Hub) Remove(chatID int64) bool {
	h.mu.Lock()
	e, ok := h.sessions[chatID]
	if ok {
		delete(h.sessions, chatID)
	}
	h.mu.Unlock()

	if ok {
		h.log.Info("session removed", "chat_id", chatID, "run_id", e.session.RunID())
	}
	return ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CountByState - число сессий в каждом состоянии
func (h *Hub) CountByState() map[domain.GameState]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[domain.GameState]int)
	for _, e := range h.sessions {
		counts[e.session.State()]++
	}
	return counts
}

// List - снимки всех сессий, упорядоченные по chat_id
func (h *Hub) List() []game.Snapshot {
	h.mu.RLock()
	snaps := make([]game.Snapshot, 0, len(h.sessions))
	for _, e := range h.sessions {
		snaps = append(snaps, e.session.Snapshot())
	}
	h.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ChatID < snaps[j].ChatID })
	return snaps
}

// Sweep удаляет сессии, которые не менялись дольше ttl
func (h *Hub) Sweep(now time.Time, ttl time.Duration) []int64 {
	h.mu.Lock()
	var evicted []int64
	for chatID, e := range h.sessions {
		if now.Sub(e.session.UpdatedAt()) > ttl {
			delete(h.sessions, chatID)
			evicted = append(evicted, chatID)
		}
	}
	cb := h.onEvict
	h.mu.Unlock()

	sort.Slice(evicted, func(i, j int) bool { return evicted[i] < evicted[j] })
	for _, chatID := range evicted {
		h.log.Info("stale session evicted", "chat_id", chatID, "ttl", ttl)
		if cb != nil {
			cb(chatID)
		}
	}
	return evicted
}

// StartCleanup периодически вызывает Sweep до отмены ctx
func (h *Hub) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				h.log.Info("session cleanup stopped")
				return
			case now := <-ticker.C:
				h.Sweep(now, ttl)
			}
		}
	}()
}
