package tui

import (
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
)

func TestGenerateFormCreation(t *testing.T) {
	form := NewGenerateForm(" https://github.com/acme/app.git ", "cloned_repo")
	assert.NotNil(t, form.Form())
	assert.Equal(t, "https://github.com/acme/app.git", form.RepoURL())
	assert.Equal(t, "cloned_repo", form.Dest())
	assert.Equal(t, huh.StateNormal, form.Form().State)
}

func TestValidateRepoURL(t *testing.T) {
	assert.NoError(t, validateRepoURL("https://github.com/acme/app.git"))
	assert.NoError(t, validateRepoURL("git@github.com:acme/app.git"))
	assert.Error(t, validateRepoURL(""))
	assert.Error(t, validateRepoURL("   "))
	assert.Error(t, validateRepoURL("https://github.com/acme/my app.git"))
}

func TestValidateDest(t *testing.T) {
	assert.NoError(t, validateDest("cloned_repo"))
	assert.Error(t, validateDest(" "))
}

func TestNewConfirmForm(t *testing.T) {
	var ok bool
	form := NewConfirmForm("Publish now?", "docs/ has 5 documents", &ok)
	assert.NotNil(t, form)
	assert.False(t, ok)
}
