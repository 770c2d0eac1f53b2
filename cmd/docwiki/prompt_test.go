package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptCmd(t *testing.T) {
	out, _, err := executeCmd(t, "prompt", "--repo-dir", "work/acme", "--docs-dir", "work/manual")
	require.NoError(t, err)
	assert.Contains(t, out, "#file:acme")
	assert.Contains(t, out, "./manual/index.md")
	assert.Contains(t, out, "./manual/web.md")
}

func TestPromptCmdDefaultsToConfiguredClone(t *testing.T) {
	clearCredentialEnv(t)
	cfgPath := writeConfig(t, "[generate]\ndest = \"checkout\"\n")

	out, _, err := executeCmd(t, "prompt", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "#file:checkout")
	assert.Contains(t, out, "./docs/architecture.md")
}
