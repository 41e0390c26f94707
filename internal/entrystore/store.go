// Package entrystore keeps text entries with their trigram models and ranks
// them against a query.
package entrystore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/iishyfishyy/trigramdb/internal/logger"
	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

var (
	// ErrNotFound is returned when an id does not name a live entry.
	ErrNotFound = errors.New("entry not found")
	// ErrBuild is returned when a model cannot be built from the given text.
	ErrBuild = errors.New("failed to build model")
	// ErrEmptyStore is returned by Search on a store without entries.
	ErrEmptyStore = errors.New("store is empty")
	// ErrDivision is returned by Search when every entry scores the same.
	ErrDivision = scoring.ErrDivision
)

// maxIDAttempts bounds retries when the id generator collides with a live id.
const maxIDAttempts = 8

// Option configures a Store.
type Option func(*Store)

// WithIterations sets the number of inference iterations used by Search.
func WithIterations(n int) Option {
	return func(s *Store) {
		s.iterations = n
	}
}

// WithWeights sets the per-distance weights used by Search.
func WithWeights(weights []float64) Option {
	return func(s *Store) {
		s.weights = append([]float64(nil), weights...)
	}
}

// WithLogger replaces the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store maps ids to entries. It is not safe for concurrent use; wrap it in
// a Guarded when several goroutines share it.
type Store struct {
	entries    map[string]Entry
	iterations int
	weights    []float64
	newID      func() string
	logger     *log.Logger
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]Entry),
		iterations: scoring.DefaultIterations,
		weights:    scoring.DefaultWeights(),
		newID:      uuid.NewString,
		logger:     logger.New("entrystore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Iterations returns the inference iteration count used by Search.
func (s *Store) Iterations() int {
	return s.iterations
}

// Weights returns a copy of the weights used by Search.
func (s *Store) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Add builds a model for text and stores it under a fresh id.
func (s *Store) Add(text string) (string, error) {
	entry, err := NewEntry(text)
	if err != nil {
		return "", fmt.Errorf("add %q: %w", preview(text), err)
	}

	id, err := s.freshID()
	if err != nil {
		return "", fmt.Errorf("add %q: %w", preview(text), err)
	}

	s.entries[id] = entry
	s.logger.Debug("added entry", "id", id, "trigrams", len(entry.Model))
	return id, nil
}

// Get returns the entry stored under id.
func (s *Store) Get(id string) (Entry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

// Delete removes the entry stored under id.
func (s *Store) Delete(id string) error {
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.entries, id)
	s.logger.Debug("deleted entry", "id", id)
	return nil
}

// Update replaces the entry stored under id with one built from text. The
// store is left untouched when the id is unknown or the build fails.
func (s *Store) Update(id, text string) error {
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	entry, err := NewEntry(text)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}

	s.entries[id] = entry
	s.logger.Debug("updated entry", "id", id, "trigrams", len(entry.Model))
	return nil
}

// Search ranks every entry against query using the store settings.
func (s *Store) Search(query string) (scoring.Result, error) {
	return s.SearchWith(query, s.iterations, s.weights)
}

// SearchWith ranks every entry against query with explicit settings.
func (s *Store) SearchWith(query string, iterations int, weights []float64) (scoring.Result, error) {
	if len(s.entries) == 0 {
		return nil, fmt.Errorf("search %q: %w", preview(query), ErrEmptyStore)
	}

	raw := make([]scoring.Raw, 0, len(s.entries))
	for id, entry := range s.entries {
		value, err := scoring.Score(query, entry.Model, iterations, weights)
		if err != nil {
			return nil, fmt.Errorf("search %q: entry %s: %w", preview(query), id, err)
		}
		raw = append(raw, scoring.Raw{ID: id, Value: value})
	}

	result, err := scoring.Rank(raw)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", preview(query), err)
	}

	s.logger.Debug("search complete", "query", preview(query), "entries", len(raw), "top", result[0].ID)
	return result, nil
}

// List returns the live ids in ascending order.
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the id to entry mapping.
func (s *Store) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out
}

// Restore replaces the contents of the store with entries. Every entry is
// validated first; on error the store is unchanged.
func (s *Store) Restore(entries map[string]Entry) error {
	next := make(map[string]Entry, len(entries))
	for id, entry := range entries {
		if id == "" {
			return errors.New("restore: empty id")
		}
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("restore %s: %w", id, err)
		}
		next[id] = entry
	}

	s.entries = next
	s.logger.Debug("restored entries", "count", len(next))
	return nil
}

func (s *Store) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, taken := s.entries[id]; !taken {
			return id, nil
		}
		s.logger.Debug("id collision, retrying", "id", id)
	}
	return "", fmt.Errorf("no free id after %d attempts", maxIDAttempts)
}

// preview shortens text for error messages and log lines.
func preview(text string) string {
	const limit = 40
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
