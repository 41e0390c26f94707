package entrystore

import (
	"sync"

	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

// Guarded wraps a Store with a readers-writer lock. Add, Update, Delete and
// Restore take the write lock; the rest share the read lock.
type Guarded struct {
	mu    sync.RWMutex
	store *Store
}

// NewGuarded wraps store.
func NewGuarded(store *Store) *Guarded {
	return &Guarded{store: store}
}

// Add stores a new entry under the write lock
func (g *Guarded) Add(text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Add(text)
}

// Update replaces an entry's text under the write lock
func (g *Guarded) Update(id, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Update(id, text)
}

// Delete removes an entry under the write lock
func (g *Guarded) Delete(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Delete(id)
}

// Restore replaces the store contents under the write lock
func (g *Guarded) Restore(entries map[string]Entry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Restore(entries)
}

// Get returns an entry under the read lock
func (g *Guarded) Get(id string) (Entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Get(id)
}

// Search ranks every entry against query under the read lock
func (g *Guarded) Search(query string) (scoring.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Search(query)
}

// List returns the sorted ids under the read lock
func (g *Guarded) List() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.List()
}

// Len returns the entry count under the read lock
func (g *Guarded) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Len()
}

// Entries returns a copy of all entries under the read lock
func (g *Guarded) Entries() map[string]Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Entries()
}
