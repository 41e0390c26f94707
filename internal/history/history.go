package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

// Entry represents a single search in the history
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Query     string         `json:"query"`
	TopID     string         `json:"top_id,omitempty"`
	TopScore  float64        `json:"top_score,omitempty"`
	Results   int            `json:"results"`
	Matches   scoring.Result `json:"matches,omitempty"`
}

// History manages search history
type History struct {
	Entries []Entry `json:"entries"`

	path string
}

// Load reads the history from path
func Load(path string) (*History, error) {
	// If history doesn't exist, return empty history
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &History{Entries: []Entry{}, path: path}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	hist := History{path: path}
	if err := json.Unmarshal(data, &hist); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if hist.Entries == nil {
		hist.Entries = []Entry{}
	}

	return &hist, nil
}

// Save writes the history back to the file it was loaded from
func (h *History) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// AddEntry appends entry and drops the oldest entries beyond limit.
// A limit of zero keeps everything.
func (h *History) AddEntry(entry Entry, limit int) {
	h.Entries = append(h.Entries, entry)
	h.Trim(limit)
}

// Trim keeps only the newest limit entries
func (h *History) Trim(limit int) {
	if limit > 0 && len(h.Entries) > limit {
		h.Entries = append([]Entry(nil), h.Entries[len(h.Entries)-limit:]...)
	}
}

// Last returns up to n of the newest entries, newest first
func (h *History) Last(n int) []Entry {
	if n <= 0 || n > len(h.Entries) {
		n = len(h.Entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.Entries) - 1; i >= len(h.Entries)-n; i-- {
		out = append(out, h.Entries[i])
	}
	return out
}

// Clear removes every entry
func (h *History) Clear() {
	h.Entries = []Entry{}
}

// NewEntry creates a history entry for a ranked search. Only the first
// keep matches are stored; keep <= 0 stores none.
func NewEntry(query string, result scoring.Result, keep int) Entry {
	entry := Entry{
		Timestamp: time.Now(),
		Query:     query,
		Results:   len(result),
	}
	if len(result) > 0 {
		entry.TopID = result[0].ID
		entry.TopScore = result[0].Score
	}
	if keep > 0 {
		entry.Matches = append(scoring.Result(nil), result.Top(keep)...)
	}
	return entry
}
