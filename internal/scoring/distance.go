// Package scoring turns automaton runs into scalar scores and ranks the
// scores of a whole search.
package scoring

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/iishyfishyy/trigramdb/internal/trigram"
)

// DefaultIterations is the number of automaton iterations used by a search.
const DefaultIterations = 5

// ErrNoDistances is returned when fewer than two iterations leave nothing to
// compare.
var ErrNoDistances = errors.New("scoring: need at least two iterations to measure distance")

// DefaultWeights returns the weights applied to successive distances.
func DefaultWeights() []float64 {
	return []float64{0.5, 0.25, 0.125, 0.075, 0.05}
}

// Distance returns the Levenshtein distance between a and b, counted in
// characters.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Distances returns the edit distance between each consecutive pair of
// steps.
func Distances(steps []string) []int {
	if len(steps) < 2 {
		return nil
	}
	out := make([]int, len(steps)-1)
	for i := range out {
		out[i] = Distance(steps[i], steps[i+1])
	}
	return out
}

// WeightedAverage pairs distances with weights up to the shorter of the two
// and divides the weighted sum by the number of distances. Weights beyond
// the last distance are ignored; distances beyond the last weight add
// nothing to the sum but still count in the denominator.
func WeightedAverage(distances []int, weights []float64) (float64, error) {
	if len(distances) == 0 {
		return 0, ErrNoDistances
	}
	var sum float64
	for k := 0; k < len(distances) && k < len(weights); k++ {
		sum += weights[k] * float64(distances[k])
	}
	return sum / float64(len(distances)), nil
}

// Score seeds the automaton with query, runs it against model and reduces
// the distances between successive outputs to a single value. Lower values
// mean the automaton changed less between iterations.
func Score(query string, model trigram.Model, iterations int, weights []float64) (float64, error) {
	steps := trigram.Infer(query, model, iterations)
	score, err := WeightedAverage(Distances(steps), weights)
	if err != nil {
		return 0, fmt.Errorf("score %d iterations: %w", iterations, err)
	}
	return score, nil
}
