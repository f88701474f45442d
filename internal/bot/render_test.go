package bot

import (
	"testing"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyText(t *testing.T) {
	snap := game.Snapshot{Players: []domain.Player{alice, bob}}

	out := tallyText("Results", snap, game.TallyResult{Counts: map[int64]int{}, Leaders: []int64{}})
	assert.Equal(t, "Results\n\nNo votes were cast.", out)

	out = tallyText("Results", snap, game.TallyResult{
		Counts:  map[int64]int{bob.ID: 2, alice.ID: 1},
		Leaders: []int64{bob.ID},
		Total:   3,
	})
	assert.Equal(t, "Results\n\nAlice Smith — 1 vote\nBob — 2 votes\n\n🏆 MVP: Bob", out)
}

func TestVoteKeyboard(t *testing.T) {
	kb := voteKeyboard([]domain.Player{alice, bob})
	require.Len(t, kb.InlineKeyboard, 2)

	button := kb.InlineKeyboard[0][0]
	assert.Equal(t, "Alice Smith", button.Text)
	require.NotNil(t, button.CallbackData)
	assert.Equal(t, "vote_1", *button.CallbackData)
}

func TestRosterText(t *testing.T) {
	assert.Contains(t, rosterText(nil), "Players (0):\n— nobody yet")
	assert.Contains(t, rosterText([]domain.Player{alice, bob}), "1. Alice Smith\n2. Bob\n")
}
