package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// GenerateForm asks for the repository to document and where to clone it.
type GenerateForm struct {
	form    *huh.Form
	repoURL string
	dest    string
}

// NewGenerateForm creates the form. repoURL and dest pre-fill the fields.
func NewGenerateForm(repoURL, dest string) *GenerateForm {
	gf := &GenerateForm{repoURL: repoURL, dest: dest}

	gf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Repository URL").
				Placeholder("https://github.com/owner/project.git").
				Validate(validateRepoURL).
				Value(&gf.repoURL),
			huh.NewInput().
				Title("Clone into").
				Validate(validateDest).
				Value(&gf.dest),
		).Title("Generate documentation"),
	)
	return gf
}

// Form returns the underlying huh.Form.
func (g *GenerateForm) Form() *huh.Form { return g.form }

// Run shows the form on the terminal.
func (g *GenerateForm) Run() error { return g.form.Run() }

// RepoURL returns the entered repository URL.
func (g *GenerateForm) RepoURL() string { return strings.TrimSpace(g.repoURL) }

// Dest returns the entered clone destination.
func (g *GenerateForm) Dest() string { return strings.TrimSpace(g.dest) }

func validateRepoURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("repository URL is required")
	}
	if strings.ContainsAny(s, " \t") {
		return errors.New("repository URL must not contain spaces")
	}
	return nil
}

func validateDest(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("destination is required")
	}
	return nil
}

// NewConfirmForm builds a yes/no question bound to value.
func NewConfirmForm(title, description string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(value),
		),
	)
}

// Confirm asks a yes/no question on the terminal.
func Confirm(title, description string) (bool, error) {
	var ok bool
	if err := NewConfirmForm(title, description, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
