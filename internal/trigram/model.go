package trigram

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Size is the number of characters in a model key.
const Size = 3

// Tolerance is the allowed deviation of a distribution's total from 1.
const Tolerance = 1e-9

var (
	// ErrInvalidText is returned by Build for input that is not valid UTF-8.
	ErrInvalidText = errors.New("trigram: text is not valid UTF-8")

	// ErrInvalidModel is returned by Validate when a model breaks its invariants.
	ErrInvalidModel = errors.New("trigram: invalid model")
)

// Transition is one possible next character and its probability.
type Transition struct {
	Next rune
	Prob float64
}

// Distribution lists the characters observed after a trigram, in the order
// they were first seen while building the model. The order decides ties in
// Best.
type Distribution []Transition

// Best returns the most probable next character. Ties go to the transition
// seen first. ok is false for an empty distribution.
func (d Distribution) Best() (next rune, ok bool) {
	best := -1
	for i, t := range d {
		if best < 0 || t.Prob > d[best].Prob {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return d[best].Next, true
}

// Sum returns the total probability mass of the distribution.
func (d Distribution) Sum() float64 {
	var total float64
	for _, t := range d {
		total += t.Prob
	}
	return total
}

// Model maps a 3-character window of normalized text to the distribution of
// the character that followed it.
type Model map[string]Distribution

type tally struct {
	next  rune
	count int
}

// Build normalizes text and derives its trigram model. A window only counts
// when a character follows it, so text shorter than four normalized
// characters yields an empty model.
func Build(text string) (Model, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}

	runes := []rune(Normalize(text))
	counts := make(map[string][]tally)
	totals := make(map[string]int)

	for i := 0; i+Size < len(runes); i++ {
		key := string(runes[i : i+Size])
		next := runes[i+Size]
		totals[key]++

		tallies := counts[key]
		found := false
		for j := range tallies {
			if tallies[j].next == next {
				tallies[j].count++
				found = true
				break
			}
		}
		if !found {
			tallies = append(tallies, tally{next: next, count: 1})
		}
		counts[key] = tallies
	}

	model := make(Model, len(counts))
	for key, tallies := range counts {
		total := float64(totals[key])
		dist := make(Distribution, len(tallies))
		for j, t := range tallies {
			dist[j] = Transition{Next: t.next, Prob: float64(t.count) / total}
		}
		model[key] = dist
	}
	return model, nil
}

// Validate checks that every key is exactly three characters long and that
// every distribution is a non-empty set of distinct characters whose
// probabilities lie in (0,1] and add up to 1.
func (m Model) Validate() error {
	for key, dist := range m {
		if utf8.RuneCountInString(key) != Size {
			return fmt.Errorf("%w: key %q is not %d characters", ErrInvalidModel, key, Size)
		}
		if len(dist) == 0 {
			return fmt.Errorf("%w: key %q has no transitions", ErrInvalidModel, key)
		}
		seen := make(map[rune]struct{}, len(dist))
		for _, t := range dist {
			if _, dup := seen[t.Next]; dup {
				return fmt.Errorf("%w: key %q lists %q twice", ErrInvalidModel, key, t.Next)
			}
			seen[t.Next] = struct{}{}
			if math.IsNaN(t.Prob) || t.Prob <= 0 || t.Prob > 1 {
				return fmt.Errorf("%w: key %q has probability %v for %q", ErrInvalidModel, key, t.Prob, t.Next)
			}
		}
		if sum := dist.Sum(); math.Abs(sum-1) > Tolerance {
			return fmt.Errorf("%w: key %q sums to %v", ErrInvalidModel, key, sum)
		}
	}
	return nil
}
