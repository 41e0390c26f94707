// Package persist saves and loads entry stores.
package persist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iishyfishyy/trigramdb/internal/entrystore"
)

// SchemaVersion is the version written into every snapshot.
const SchemaVersion = 1

// Backend kinds accepted by Open.
const (
	KindJSON    = "json"
	KindMsgpack = "msgpack"
	KindSQLite  = "sqlite"
	KindMemory  = "memory"
)

// ErrSchemaVersion is returned when stored data has an unknown schema version.
var ErrSchemaVersion = errors.New("unsupported schema version")

// Backend stores snapshots of an entry store
type Backend interface {
	// Save replaces the stored state with snap
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored state, or an empty snapshot when nothing was saved yet
	Load(ctx context.Context) (*Snapshot, error)

	// Close releases any resources held by the backend
	Close() error
}

// Snapshot is the persisted form of a store: the search settings in effect
// when it was saved plus every entry with its model.
type Snapshot struct {
	Version    int                         `json:"version" msgpack:"version"`
	Iterations int                         `json:"iterations" msgpack:"iterations"`
	Weights    []float64                   `json:"weights" msgpack:"weights"`
	Entries    map[string]entrystore.Entry `json:"entries" msgpack:"entries"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version: SchemaVersion,
		Entries: make(map[string]entrystore.Entry),
	}
}

// Capture records the settings and entries of store.
func Capture(store *entrystore.Store) *Snapshot {
	return &Snapshot{
		Version:    SchemaVersion,
		Iterations: store.Iterations(),
		Weights:    store.Weights(),
		Entries:    store.Entries(),
	}
}

// Restore loads the snapshot entries into store, replacing its contents.
func (s *Snapshot) Restore(store *entrystore.Store) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return store.Restore(s.Entries)
}

// Validate checks the schema version and every entry model.
func (s *Snapshot) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrSchemaVersion, s.Version)
	}
	for id, entry := range s.Entries {
		if id == "" {
			return errors.New("snapshot contains an entry without id")
		}
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("entry %s: %w", id, err)
		}
	}
	return nil
}

// KindForPath guesses the backend kind from a file extension.
func KindForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return KindMsgpack
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// Open returns the backend for kind at path. An empty kind is derived from
// the path extension.
func Open(kind, path string) (Backend, error) {
	if kind == "" {
		kind = KindForPath(path)
	}

	switch kind {
	case KindJSON:
		return NewFileBackend(path, JSONCodec{}), nil
	case KindMsgpack:
		return NewFileBackend(path, MsgpackCodec{}), nil
	case KindSQLite:
		return NewSQLiteBackend(path)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", kind)
	}
}
