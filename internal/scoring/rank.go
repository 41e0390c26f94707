package scoring

import (
	"errors"
	"math"
	"sort"
)

// ErrDivision is returned by Rank when the raw scores have no variance, which
// includes a search over a single entry.
var ErrDivision = errors.New("scoring: standard deviation of scores is zero")

// Raw is the unnormalized score of one entry.
type Raw struct {
	ID    string
	Value float64
}

// Match is one ranked entry.
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Result holds matches sorted by descending score.
type Result []Match

// IDs returns the ids in ranked order.
func (r Result) IDs() []string {
	ids := make([]string, len(r))
	for i, m := range r {
		ids[i] = m.ID
	}
	return ids
}

// Map returns the scores keyed by id.
func (r Result) Map() map[string]float64 {
	out := make(map[string]float64, len(r))
	for _, m := range r {
		out[m.ID] = m.Score
	}
	return out
}

// Top returns the first n matches, or all of them when n <= 0.
func (r Result) Top(n int) Result {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// Rank converts raw scores to z-scores using the population mean and
// standard deviation and sorts them in descending order. Equal scores are
// ordered by descending id.
func Rank(raw []Raw) (Result, error) {
	if len(raw) == 0 {
		return nil, ErrDivision
	}

	n := float64(len(raw))
	var sum float64
	for _, r := range raw {
		sum += r.Value
	}
	mean := sum / n

	var variance float64
	for _, r := range raw {
		d := r.Value - mean
		variance += d * d
	}
	std := math.Sqrt(variance / n)
	if std == 0 {
		return nil, ErrDivision
	}

	result := make(Result, len(raw))
	for i, r := range raw {
		result[i] = Match{ID: r.ID, Score: (r.Value - mean) / std}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
