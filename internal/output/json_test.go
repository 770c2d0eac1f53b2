// internal/output/json_test.go
package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatterBasic(t *testing.T) {
	f := NewJSONFormatter()
	result := &PublishResult{
		RunID:      "run-1",
		SpaceKey:   "DOCS",
		DocsDir:    "docs",
		State:      "done",
		DurationMs: 500,
		Pages: []PageResult{
			{Document: "index", Title: "Acme", PageID: "1", Action: "created"},
		},
	}

	out, err := f.Format(result)
	require.NoError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(out, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "DOCS", decoded["space_key"])
	assert.Equal(t, "done", decoded["state"])
	assert.Equal(t, float64(500), decoded["duration_ms"])
	assert.NotContains(t, decoded, "dry_run")
	assert.NotContains(t, decoded, "error")

	pages, ok := decoded["pages"].([]any)
	require.True(t, ok)
	require.Len(t, pages, 1)
	page := pages[0].(map[string]any)
	assert.Equal(t, "Acme", page["title"])
	assert.NotContains(t, page, "attachments")
}

func TestJSONFormatterWithError(t *testing.T) {
	f := NewJSONFormatter()
	result := &PublishResult{
		State:  "failed",
		DryRun: true,
		Error:  "index document failed: unauthorized",
	}

	out, err := f.Format(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "index document failed: unauthorized", decoded["error"])
	assert.Equal(t, true, decoded["dry_run"])
}
