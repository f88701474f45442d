package metrics

import (
	"errors"

	"teamgame_bot/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счетчики движка сессий
type Metrics struct {
	SessionsCreated prometheus.Counter
	SessionsClosed  *prometheus.CounterVec // reason: closed|evicted|admin
	Transitions     *prometheus.CounterVec // to: состояние
	Rejected        *prometheus.CounterVec // op, kind
	Votes           prometheus.Counter
	ActiveSessions  prometheus.Gauge
	RateLimited     prometheus.Counter
}

// New регистрирует метрики в reg. Для тестов передается отдельный prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "sessions_created_total",
			Help:      "Game sessions created.",
		}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "sessions_closed_total",
			Help:      "Game sessions removed from the directory.",
		}, []string{"reason"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "state_transitions_total",
			Help:      "Session state transitions by target state.",
		}, []string{"to"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "rejected_actions_total",
			Help:      "Rejected session actions by operation and error kind.",
		}, []string{"op", "kind"}),
		Votes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "votes_total",
			Help:      "MVP votes accepted, including re-votes.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamgame",
			Name:      "active_sessions",
			Help:      "Sessions currently held in the directory.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamgame",
			Name:      "rate_limited_total",
			Help:      "Bot actions dropped by the rate limiter.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SessionsCreated,
			m.SessionsClosed,
			m.Transitions,
			m.Rejected,
			m.Votes,
			m.ActiveSessions,
			m.RateLimited,
		)
	}
	return m
}

// ObserveTransition отмечает переход в состояние to
func (m *Metrics) ObserveTransition(to domain.GameState) {
	m.Transitions.WithLabelValues(to.String()).Inc()
}

// ObserveRejected классифицирует ошибку операции op
func (m *Metrics) ObserveRejected(op string, err error) {
	m.Rejected.WithLabelValues(op, ErrorKind(err)).Inc()
}

// ErrorKind - короткое имя вида ошибки для меток
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnknownCandidate):
		return "unknown_candidate"
	default:
		return "internal"
	}
}
