package metrics

import (
	"errors"
	"fmt"
	"testing"

	"teamgame_bot/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "none", ErrorKind(nil))
	assert.Equal(t, "not_found", ErrorKind(&domain.NotFoundError{ChatID: 1}))
	assert.Equal(t, "already_exists", ErrorKind(&domain.AlreadyExistsError{ChatID: 1}))
	assert.Equal(t, "invalid_state", ErrorKind(fmt.Errorf("wrap: %w", &domain.InvalidStateError{Op: "join"})))
	assert.Equal(t, "validation", ErrorKind(&domain.ValidationError{Field: "score"}))
	assert.Equal(t, "unknown_candidate", ErrorKind(&domain.UnknownCandidateError{CandidateID: 3}))
	assert.Equal(t, "internal", ErrorKind(errors.New("boom")))
}

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTransition(domain.StateVoting)
	m.ObserveTransition(domain.StateVoting)
	m.ObserveRejected("cast_vote", &domain.UnknownCandidateError{CandidateID: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("VOTING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("cast_vote", "unknown_candidate")))

	n, err := testutil.GatherAndCount(reg, "teamgame_state_transitions_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
