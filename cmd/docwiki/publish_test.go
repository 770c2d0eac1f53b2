package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/docwiki/internal/config"
	"github.com/julianshen/docwiki/internal/output"
	"github.com/julianshen/docwiki/internal/runner"
	"github.com/julianshen/docwiki/internal/store"
	"github.com/julianshen/docwiki/internal/wiki"
)

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestPublishCmdDefaultFlags(t *testing.T) {
	cmd := publishCmd()
	assert.Equal(t, "publish [docs-dir]", cmd.Use)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	assert.False(t, dryRun)

	out, _ := cmd.Flags().GetString("output")
	assert.Equal(t, "markdown", out)

	onConflict, _ := cmd.Flags().GetString("on-conflict")
	assert.Empty(t, onConflict)

	rewrite, _ := cmd.Flags().GetBool("rewrite-links")
	assert.False(t, rewrite)
}

func TestNewFormatter(t *testing.T) {
	f, err := newFormatter("json")
	require.NoError(t, err)
	assert.IsType(t, &output.JSONFormatter{}, f)

	f, err = newFormatter("markdown")
	require.NoError(t, err)
	assert.IsType(t, &output.MarkdownFormatter{}, f)

	_, err = newFormatter("yaml")
	assert.Error(t, err)
}

func TestNewPipelineConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Confluence.SpaceKey = "DOCS"
	cfg.Publish.OnConflict = "update"
	cfg.Publish.RewriteLinks = true
	cfg.Diagrams.OutputDir = "/tmp/images"

	got, err := newPipelineConfig(cfg, "docs", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "docs", got.DocsDir)
	assert.Equal(t, "mmdc", got.Diagrams.Renderer)
	assert.Equal(t, map[string]string{"mermaid": "mmd"}, got.Diagrams.Languages)
	assert.Equal(t, "DOCS", got.Publish.SpaceKey)
	assert.Equal(t, wiki.ConflictUpdate, got.Publish.OnConflict)
	assert.True(t, got.Publish.RewriteLinks)
	assert.Equal(t, "/tmp/images", got.Publish.ImageDir)
	assert.Equal(t, wiki.DefaultFallbackTitle, got.Publish.FallbackTitle)

	cfg.Publish.OnConflict = "merge"
	_, err = newPipelineConfig(cfg, "docs", io.Discard)
	assert.Error(t, err)
}

func TestPublishDryRun(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "")
	docs := writeDocs(t, map[string]string{
		"index.md": "# Acme\n\nSee the web docs.\n",
		"web.md":   "# Web\n\n```python\nprint('hi')\n```\n",
	})

	out, stderr, err := executeCmd(t, "publish", docs, "--dry-run", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "Published 2 of 2 documents to space "+dryRunSpaceKey)
	assert.Contains(t, out, "## Acme")
	assert.Contains(t, out, "## Web")
	assert.Contains(t, out, `<ac:parameter ac:name="language">python</ac:parameter>`)
	assert.Contains(t, out, "<![CDATA[print('hi')")
	assert.Contains(t, stderr, "publish: loading "+docs)
}

func TestPublishDryRunJSON(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "[confluence]\nspace_key = \"DOCS\"\n")
	docs := writeDocs(t, map[string]string{
		"index.md":        "# Acme\n",
		"architecture.md": "# Architecture\n",
	})

	out, _, err := executeCmd(t, "publish", docs, "--dry-run", "--output", "json", "--config", cfgPath)
	require.NoError(t, err)

	var result output.PublishResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.DryRun)
	assert.Equal(t, "DOCS", result.SpaceKey)
	assert.Equal(t, "done", result.State)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, "Acme", result.Pages[0].Title)
	assert.Equal(t, "Architecture", result.Pages[1].Title)
	assert.Equal(t, result.Pages[0].PageID, result.Pages[1].ParentID)
}

func TestPublishEmptyFolderFailsRun(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "")

	_, stderr, err := executeCmd(t, "publish", t.TempDir(), "--dry-run", "--config", cfgPath)
	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, runner.ExitRunFailed, exitErr.Code)
	assert.Contains(t, stderr, "no Markdown documents")
}

func TestPublishRequiresCredentials(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "")
	docs := writeDocs(t, map[string]string{"index.md": "# Acme\n"})

	_, _, err := executeCmd(t, "publish", docs, "--config", cfgPath, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissing)
	assert.Contains(t, err.Error(), config.EnvURL)
}

func TestPublishRejectsUnknownConflictPolicy(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "")
	docs := writeDocs(t, map[string]string{"index.md": "# Acme\n"})

	_, _, err := executeCmd(t, "publish", docs, "--dry-run", "--on-conflict", "merge", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown conflict policy")
}

// fakeConfluence serves the content endpoints the publisher uses.
type fakeConfluence struct {
	mu      sync.Mutex
	created []map[string]any
}

func (f *fakeConfluence) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/rest/api/content":
		_, _ = io.WriteString(w, `{"results":[]}`)
	case r.Method == http.MethodPost && r.URL.Path == "/rest/api/content":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		fmt.Fprintf(w, `{"id":"%d","title":%q,"version":{"number":1}}`, 100+len(f.created), body["title"])
	default:
		http.NotFound(w, r)
	}
}

func TestPublishToConfluenceRecordsLedger(t *testing.T) {
	clearCredentialEnv(t)
	server := &fakeConfluence{}
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")
	cfgPath := writeConfig(t, fmt.Sprintf(`
[confluence]
url = %q
space_key = "DOCS"
username = "bot@example.com"
api_token_source = "config"
api_token = "secret"

[publish]
ledger_path = %q
`, srv.URL, ledgerPath))
	docs := writeDocs(t, map[string]string{
		"index.md": "# Acme\n",
		"web.md":   "# Web\n",
	})

	out, _, err := executeCmd(t, "publish", docs, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Published 2 of 2 documents to space DOCS")
	assert.NotContains(t, out, "```xml")
	require.Len(t, server.created, 2)
	assert.Equal(t, "Acme", server.created[0]["title"])

	s, err := store.NewStore(ledgerPath)
	require.NoError(t, err)
	defer s.Close()

	pages, err := s.ListPages("DOCS")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "101", pages[0].PageID)
	assert.Equal(t, "101", pages[1].ParentID)

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "done", runs[0].State)
	assert.Equal(t, 2, runs[0].Documents)
	assert.Equal(t, pages[0].RunID, runs[0].RunID)

	out, _, err = executeCmd(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].RunID)
	assert.Contains(t, out, "| DOCS |")

	out, _, err = executeCmd(t, "history", "--pages", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "| DOCS | Web | 102 | 101 | web | created |")
}

func TestPublishIndexConflictExitsRunFailed(t *testing.T) {
	clearCredentialEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"id":"9","title":"Acme","version":{"number":2}}]}`)
	}))
	t.Cleanup(srv.Close)

	cfgPath := writeConfig(t, fmt.Sprintf(`
[confluence]
url = %q
space_key = "DOCS"
username = "bot"
api_token_source = "config"
api_token = "secret"

[publish]
ledger_path = %q
`, srv.URL, filepath.Join(t.TempDir(), "ledger.db")))
	docs := writeDocs(t, map[string]string{"index.md": "# Acme\n", "web.md": "# Web\n"})

	out, stderr, err := executeCmd(t, "publish", docs, "--config", cfgPath)
	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, runner.ExitRunFailed, exitErr.Code)
	assert.Contains(t, out, "## Error")
	assert.Contains(t, stderr, "✗ ")
	assert.Contains(t, stderr, "page already exists")
}

func TestPublishMissingSettingsSuggestsInit(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "")
	docs := writeDocs(t, map[string]string{"index.md": "# Acme\n"})

	_, _, err := executeCmd(t, "publish", docs, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docwiki init")
}
