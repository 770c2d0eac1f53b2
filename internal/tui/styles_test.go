package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusHelpersKeepText(t *testing.T) {
	assert.Contains(t, Success("cloned"), "cloned")
	assert.Contains(t, Warning("retrying"), "retrying")
	assert.Contains(t, Error("failed"), "failed")
	assert.Contains(t, Muted("hint"), "hint")
	assert.Contains(t, Title("docwiki"), "docwiki")
	assert.Contains(t, PromptBox("paste me"), "paste me")
}

func TestStatusf(t *testing.T) {
	var buf bytes.Buffer
	Statusf(&buf, Success, "published %d pages", 5)
	assert.Contains(t, buf.String(), "published 5 pages")
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}
