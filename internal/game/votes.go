package game

import "sort"

// Результат подсчета голосов
type TallyResult struct {
	Counts  map[int64]int `json:"counts"`  // кандидат -> число голосов
	Leaders []int64       `json:"leaders"` // все кандидаты с максимумом, ничья не разбивается
	Total   int           `json:"total"`
}

// Tied - несколько лидеров
func (r TallyResult) Tied() bool {
	return len(r.Leaders) > 1
}

// VoteTally хранит по одному голосу на избирателя, повторный голос перезаписывает предыдущий
type VoteTally struct {
	votes map[int64]int64 // избиратель -> кандидат
}

func NewVoteTally() *VoteTally {
	return &VoteTally{votes: make(map[int64]int64)}
}

// записывает голос, возвращает true если выбор избирателя изменился
func (t *VoteTally) Cast(voterID, candidateID int64) bool {
	prev, ok := t.votes[voterID]
	t.votes[voterID] = candidateID
	return !ok || prev != candidateID
}

func (t *VoteTally) Len() int {
	return len(t.votes)
}

// копия голосов
func (t *VoteTally) Votes() map[int64]int64 {
	out := make(map[int64]int64, len(t.votes))
	for voter, candidate := range t.votes {
		out[voter] = candidate
	}
	return out
}

// Result считает голоса. order задает порядок лидеров (обычно порядок состава),
// кандидаты вне order идут в конце по возрастанию ID. Состояние не меняется.
func (t *VoteTally) Result(order []int64) TallyResult {
	counts := make(map[int64]int)
	for _, candidate := range t.votes {
		counts[candidate]++
	}

	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}

	res := TallyResult{Counts: counts, Total: len(t.votes), Leaders: []int64{}}
	if best == 0 {
		return res
	}

	seen := make(map[int64]bool, len(order))
	for _, id := range order {
		seen[id] = true
		if counts[id] == best {
			res.Leaders = append(res.Leaders, id)
		}
	}

	var rest []int64
	for id, n := range counts {
		if n == best && !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	res.Leaders = append(res.Leaders, rest...)

	return res
}
