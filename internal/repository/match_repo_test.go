package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoteCountsRoundTrip(t *testing.T) {
	counts := map[int64]int{12: 3, -1001234567890: 1}
	assert.Equal(t, counts, decodeVoteCounts(encodeVoteCounts(counts)))
}

func TestDecodeVoteCountsSkipsGarbage(t *testing.T) {
	got := decodeVoteCounts(map[string]int{"7": 2, "abc": 5})
	assert.Equal(t, map[int64]int{7: 2}, got)
}
