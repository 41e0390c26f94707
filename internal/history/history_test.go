package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

func TestLoad_MissingFile(t *testing.T) {
	hist, err := Load(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	assert.Empty(t, hist.Entries)
	assert.NotNil(t, hist.Entries)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history.json")

	hist, err := Load(path)
	require.NoError(t, err)

	result := scoring.Result{{ID: "a", Score: 1}, {ID: "b", Score: -1}}
	hist.AddEntry(NewEntry("aaa aaa", result, 1), 10)
	require.NoError(t, hist.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)

	got := loaded.Entries[0]
	assert.Equal(t, "aaa aaa", got.Query)
	assert.Equal(t, "a", got.TopID)
	assert.Equal(t, 1.0, got.TopScore)
	assert.Equal(t, 2, got.Results)
	assert.Equal(t, scoring.Result{{ID: "a", Score: 1}}, got.Matches)
	assert.WithinDuration(t, hist.Entries[0].Timestamp, got.Timestamp, 0)
}

func TestAddEntry_Trims(t *testing.T) {
	hist := &History{}
	for i := 0; i < 5; i++ {
		hist.AddEntry(NewEntry(fmt.Sprintf("q%d", i), nil, 0), 3)
	}

	require.Len(t, hist.Entries, 3)
	assert.Equal(t, "q2", hist.Entries[0].Query)
	assert.Equal(t, "q4", hist.Entries[2].Query)

	hist.AddEntry(NewEntry("q5", nil, 0), 0)
	assert.Len(t, hist.Entries, 4)
}

func TestLast(t *testing.T) {
	hist := &History{}
	for i := 0; i < 4; i++ {
		hist.AddEntry(NewEntry(fmt.Sprintf("q%d", i), nil, 0), 0)
	}

	last := hist.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "q3", last[0].Query)
	assert.Equal(t, "q2", last[1].Query)

	assert.Len(t, hist.Last(0), 4)
	assert.Len(t, hist.Last(100), 4)
}

func TestClear(t *testing.T) {
	hist := &History{}
	hist.AddEntry(NewEntry("q", nil, 0), 0)
	hist.Clear()
	assert.Empty(t, hist.Entries)
	assert.Empty(t, hist.Last(5))
}

func TestNewEntry_EmptyResult(t *testing.T) {
	entry := NewEntry("nothing", nil, 5)
	assert.Empty(t, entry.TopID)
	assert.Zero(t, entry.Results)
	assert.Empty(t, entry.Matches)
}
