package entrystore

import (
	"fmt"

	"github.com/iishyfishyy/trigramdb/internal/trigram"
)

// Entry is a stored passage together with the model built from it. Entries
// are never modified; an update replaces the whole value.
type Entry struct {
	RawText string        `json:"raw_text" msgpack:"raw_text"`
	Model   trigram.Model `json:"model" msgpack:"model"`
}

// NewEntry builds the model for text and wraps both in an Entry.
func NewEntry(text string) (Entry, error) {
	model, err := trigram.Build(text)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return Entry{RawText: text, Model: model}, nil
}

// Validate reports whether the entry's model holds probabilities that
// satisfy the model invariants. It is used when entries come back from
// storage.
func (e Entry) Validate() error {
	if e.Model == nil {
		return fmt.Errorf("%w: entry has no model", trigram.ErrInvalidModel)
	}
	return e.Model.Validate()
}
