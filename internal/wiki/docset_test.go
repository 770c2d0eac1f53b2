package wiki

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDocSetIndexFirstThenByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "web.md"), "# Web\n")
	writeFile(t, filepath.Join(dir, "architecture.md"), "# Arch\n")
	writeFile(t, filepath.Join(dir, "index.md"), "# Home\n")
	writeFile(t, filepath.Join(dir, "database.md"), "# DB\n")
	writeFile(t, filepath.Join(dir, "index_diagram_1.png"), "png")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "sub", "nested.md"), "ignored")

	set, err := LoadDocSet(dir)
	require.NoError(t, err)

	var names []string
	for _, d := range set.Documents {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"index", "architecture", "database", "web"}, names)

	idx, ok := set.Index()
	require.True(t, ok)
	assert.Equal(t, "# Home\n", idx.Body)
	assert.Len(t, set.Children(), 3)
}

func TestLoadDocSetWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "b")
	writeFile(t, filepath.Join(dir, "a.md"), "a")

	set, err := LoadDocSet(dir)
	require.NoError(t, err)
	_, ok := set.Index()
	assert.False(t, ok)
	require.Len(t, set.Children(), 2)
	assert.Equal(t, "a", set.Children()[0].Name)
}

func TestLoadDocSetFrontMatterTitle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "---\ntitle: \" Acme Docs \"\n---\n# Ignored\n")

	set, err := LoadDocSet(dir)
	require.NoError(t, err)
	require.Len(t, set.Documents, 1)
	assert.Equal(t, "Acme Docs", set.Documents[0].Title)
	assert.Equal(t, "# Ignored\n", set.Documents[0].Body)
}

func TestLoadDocSetMissingDir(t *testing.T) {
	_, err := LoadDocSet(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading docs folder")
}

func TestLoadDocSetLeadingThematicBreak(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home\n")
	writeFile(t, filepath.Join(dir, "web.md"), "---\n\n# Web\n")

	set, err := LoadDocSet(dir)
	require.NoError(t, err)
	require.Len(t, set.Children(), 1)
	web := set.Children()[0]
	assert.Empty(t, web.Title)
	assert.Equal(t, "---\n\n# Web\n", web.Body)
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "architecture.md")
	writeFile(t, path, "---\ntitle: System Design\n---\n# Architecture\n")

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "architecture", doc.Name)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "System Design", doc.Title)
	assert.Equal(t, "# Architecture\n", doc.Body)
	assert.False(t, doc.IsIndex())
}
