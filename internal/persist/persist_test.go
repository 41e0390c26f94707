package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/trigramdb/internal/entrystore"
	"github.com/iishyfishyy/trigramdb/internal/logger"
	"github.com/iishyfishyy/trigramdb/internal/trigram"
)

func populatedStore(t *testing.T) *entrystore.Store {
	t.Helper()

	store := entrystore.New(
		entrystore.WithLogger(logger.Discard()),
		entrystore.WithIterations(4),
		entrystore.WithWeights([]float64{0.5, 0.3, 0.2}),
	)
	for _, text := range []string{
		"aaa aaa aaa aaa",
		"xyz xyz xyz xyz",
		"The quick brown fox; ties: abcd abce abcd abce",
		"hi",
	} {
		_, err := store.Add(text)
		require.NoError(t, err)
	}
	return store
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteBackend(filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Backend{
		KindJSON:    NewFileBackend(filepath.Join(dir, "store.json"), JSONCodec{}),
		KindMsgpack: NewFileBackend(filepath.Join(dir, "store.msgpack"), MsgpackCodec{}),
		KindSQLite:  sqlite,
		KindMemory:  NewMemoryBackend(),
	}
}

func TestBackends_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := populatedStore(t)
			require.NoError(t, backend.Save(ctx, Capture(store)))

			snap, err := backend.Load(ctx)
			require.NoError(t, err)

			assert.Equal(t, SchemaVersion, snap.Version)
			assert.Equal(t, 4, snap.Iterations)
			assert.Equal(t, []float64{0.5, 0.3, 0.2}, snap.Weights)
			assert.Equal(t, store.Entries(), snap.Entries)

			restored := entrystore.New(entrystore.WithLogger(logger.Discard()))
			require.NoError(t, snap.Restore(restored))

			want, err := store.Search("aaa aaa")
			require.NoError(t, err)
			got, err := restored.SearchWith("aaa aaa", store.Iterations(), store.Weights())
			require.NoError(t, err)
			require.Equal(t, want.IDs(), got.IDs())
			for i := range want {
				assert.InDelta(t, want[i].Score, got[i].Score, 1e-9)
			}
		})
	}
}

func TestBackends_PreserveTieOrder(t *testing.T) {
	ctx := context.Background()

	model := trigram.Model{
		"abc": {{Next: 'z', Prob: 0.5}, {Next: 'a', Prob: 0.5}},
	}
	snap := NewSnapshot()
	snap.Entries["tie"] = entrystore.Entry{RawText: "abczabca", Model: model}

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Save(ctx, snap))

			loaded, err := backend.Load(ctx)
			require.NoError(t, err)

			next, ok := loaded.Entries["tie"].Model["abc"].Best()
			require.True(t, ok)
			assert.Equal(t, 'z', next)
		})
	}
}

func TestBackends_SaveReplaces(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Save(ctx, Capture(populatedStore(t))))

			store := entrystore.New(entrystore.WithLogger(logger.Discard()))
			id, err := store.Add("just one entry now")
			require.NoError(t, err)
			require.NoError(t, backend.Save(ctx, Capture(store)))

			snap, err := backend.Load(ctx)
			require.NoError(t, err)
			require.Len(t, snap.Entries, 1)
			assert.Contains(t, snap.Entries, id)
		})
	}
}

func TestBackends_EmptyLoad(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			snap, err := backend.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, SchemaVersion, snap.Version)
			assert.Empty(t, snap.Entries)
		})
	}
}

func TestBackends_RejectInvalidSnapshot(t *testing.T) {
	ctx := context.Background()

	bad := NewSnapshot()
	bad.Entries["bad"] = entrystore.Entry{
		RawText: "bad",
		Model:   trigram.Model{"ab": {{Next: 'c', Prob: 1}}},
	}

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := backend.Save(ctx, bad)
			assert.ErrorIs(t, err, trigram.ErrInvalidModel)
		})
	}
}

func TestFileBackend_JSONLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	backend := NewFileBackend(path, JSONCodec{})

	snap := NewSnapshot()
	snap.Iterations = 5
	snap.Weights = []float64{0.5}
	snap.Entries["id-1"] = entrystore.Entry{
		RawText: "abcd",
		Model:   trigram.Model{"abc": {{Next: 'd', Prob: 1}}},
	}
	require.NoError(t, backend.Save(context.Background(), snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": 1,
		"iterations": 5,
		"weights": [0.5],
		"entries": {"id-1": {"raw_text": "abcd", "model": {"abc": {"d": 1}}}}
	}`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileBackend_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 7, "entries": {}}`), 0644))

	_, err := NewFileBackend(path, JSONCodec{}).Load(context.Background())
	assert.ErrorIs(t, err, ErrSchemaVersion)
}

func TestFileBackend_RejectsBrokenModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	data := `{"version": 1, "entries": {"x": {"raw_text": "abcde", "model": {"abc": {"d": 0.5}}}}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := NewFileBackend(path, JSONCodec{}).Load(context.Background())
	assert.ErrorIs(t, err, trigram.ErrInvalidModel)
}

func TestFileBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := NewFileBackend(filepath.Join(t.TempDir(), "store.json"), JSONCodec{})
	assert.ErrorIs(t, backend.Save(ctx, NewSnapshot()), context.Canceled)
	_, err := backend.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteBackend_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	backend, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES ('version', '9')`)
	require.NoError(t, err)

	_, err = backend.Load(context.Background())
	assert.ErrorIs(t, err, ErrSchemaVersion)
}

func TestKindForPath(t *testing.T) {
	tests := map[string]string{
		"store.json":     KindJSON,
		"store":          KindJSON,
		"store.msgpack":  KindMsgpack,
		"store.MPK":      KindMsgpack,
		"store.db":       KindSQLite,
		"store.sqlite3":  KindSQLite,
		"dir.v2/data.js": KindJSON,
	}
	for path, want := range tests {
		assert.Equal(t, want, KindForPath(path), path)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open("", filepath.Join(dir, "store.mpk"))
	require.NoError(t, err)
	fb, ok := b.(*FileBackend)
	require.True(t, ok)
	assert.Equal(t, KindMsgpack, fb.codec.Name())

	b, err = Open(KindSQLite, filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	_, ok = b.(*SQLiteBackend)
	assert.True(t, ok)
	require.NoError(t, b.Close())

	_, err = Open("postgres", filepath.Join(dir, "store"))
	assert.Error(t, err)
}
