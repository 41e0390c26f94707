package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/trigramdb/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestLoader() *Loader {
	return NewLoaderWithLogger(logger.Discard())
}

func TestParse_Frontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fox.md", "---\ntitle: The Fox\ntags: [animals]\n---\n\nThe quick brown fox.\nJumps over.\n")

	passage, skipped, err := NewParser().Parse(path)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, "The Fox", passage.Title)
	assert.Equal(t, []string{"animals"}, passage.Tags)
	assert.Equal(t, "The quick brown fox.\nJumps over.", passage.Text)
	assert.Equal(t, path, passage.Source)
}

func TestParse_NoFrontmatterUsesFileName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plain-note.md", "just some text")

	passage, _, err := NewParser().Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "plain-note", passage.Title)
	assert.Empty(t, passage.Tags)
	assert.Equal(t, "just some text", passage.Text)
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"empty.md":    "",
		"unclosed.md": "---\ntitle: x\nbody",
		"badyaml.md":  "---\ntitle: [\n---\nbody",
		"notext.md":   "---\ntitle: x\n---\n\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewParser().Parse(writeFile(t, dir, name, content))
			assert.Error(t, err)
		})
	}
}

func TestParse_Skip(t *testing.T) {
	path := writeFile(t, t.TempDir(), "draft.md", "---\nskip: true\n---\nnot yet")

	passage, skipped, err := NewParser().Parse(path)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Nil(t, passage)
}

func TestLoad_TextFileOnePassagePerLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sentences.txt", "first line\n\n   \nsecond line  \n")

	passages, err := newTestLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "first line", passages[0].Text)
	assert.Equal(t, "second line", passages[1].Text)
	assert.Equal(t, path+":4", passages[1].Source)
}

func TestLoad_SingleMarkdownFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.md", "line one\nline two")

	passages, err := newTestLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "line one\nline two", passages[0].Text)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "---\ntitle: Bee\ntags: [insects, garden]\n---\nbuzzing bees")
	writeFile(t, dir, "a.txt", "ants everywhere\nstill one passage")
	writeFile(t, dir, "README.md", "readme is skipped")
	writeFile(t, dir, "_meta.md", "meta is skipped")
	writeFile(t, dir, "draft.md", "---\nskip: true\n---\ndraft")
	writeFile(t, dir, "broken.md", "---\nunclosed")
	writeFile(t, dir, "ignored.json", "{}")

	passages, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, "a", passages[0].Title)
	assert.Equal(t, "ants everywhere\nstill one passage", passages[0].Text)
	assert.Equal(t, "Bee", passages[1].Title)
	assert.Equal(t, []string{"insects", "garden"}, passages[1].Tags)
	assert.Equal(t, "buzzing bees", passages[1].Text)
}

func TestLoad_Missing(t *testing.T) {
	_, err := newTestLoader().Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	passages, err := newTestLoader().LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, passages)
}
