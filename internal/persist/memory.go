package persist

import (
	"context"
	"sync"

	"github.com/iishyfishyy/trigramdb/internal/entrystore"
)

// MemoryBackend keeps the last saved snapshot in memory
type MemoryBackend struct {
	snap *Snapshot
	mu   sync.RWMutex
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Save stores a copy of snap
func (m *MemoryBackend) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = clone(snap)
	return nil
}

// Load returns a copy of the stored snapshot
func (m *MemoryBackend) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return NewSnapshot(), nil
	}
	return clone(m.snap), nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}

// clone copies the snapshot maps. Entries themselves are immutable.
func clone(snap *Snapshot) *Snapshot {
	out := &Snapshot{
		Version:    snap.Version,
		Iterations: snap.Iterations,
		Weights:    append([]float64(nil), snap.Weights...),
		Entries:    make(map[string]entrystore.Entry, len(snap.Entries)),
	}
	for id, entry := range snap.Entries {
		out.Entries[id] = entry
	}
	return out
}
