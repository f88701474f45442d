package bot

import (
	"strconv"
	"strings"

	"teamgame_bot/internal/domain"
)

// ParseScore разбирает аргументы /score: ровно два неотрицательных целых
func ParseScore(args string) (int, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, &domain.ValidationError{Field: "score", Reason: "expected two numbers"}
	}

	var scores [2]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, 0, &domain.ValidationError{Field: "score", Reason: "not an integer: " + f}
		}
		if n < 0 {
			return 0, 0, &domain.ValidationError{Field: "score", Reason: "negative value: " + f}
		}
		scores[i] = n
	}
	return scores[0], scores[1], nil
}
