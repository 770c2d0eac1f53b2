package tui

import (
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/docwiki/internal/config"
)

// NeedsSetup reports whether cfg lacks the Confluence settings that belong
// in the config file. The API token is not one of them.
func NeedsSetup(cfg *config.Config) bool {
	c := cfg.Confluence
	return c.URL == "" || c.SpaceKey == "" || c.Username == ""
}

// SetupForm is the "docwiki init" wizard. It edits cfg in place.
type SetupForm struct {
	form     *huh.Form
	cfg      *config.Config
	savePath string
}

// NewSetupForm creates a two-step wizard pre-filled from cfg.
func NewSetupForm(cfg *config.Config, savePath string) *SetupForm {
	sf := &SetupForm{cfg: cfg, savePath: savePath}

	confluenceGroup := huh.NewGroup(
		huh.NewInput().
			Title("Confluence URL").
			Placeholder("https://example.atlassian.net/wiki").
			Validate(validateWikiURL).
			Value(&cfg.Confluence.URL),
		huh.NewInput().
			Title("Space key").
			Placeholder("DOCS").
			Validate(requireValue("space key")).
			Value(&cfg.Confluence.SpaceKey),
		huh.NewInput().
			Title("Username").
			Placeholder("you@example.com").
			Validate(requireValue("username")).
			Value(&cfg.Confluence.Username),
	).Title("Confluence").
		Description("The API token is read from " + config.EnvAPIToken + " or the .env file.")

	publishGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("When a page title already exists").
			Options(
				huh.NewOption("Stop with an error", "fail"),
				huh.NewOption("Update the existing page", "update"),
				huh.NewOption("Create a page anyway", "create"),
			).
			Value(&cfg.Publish.OnConflict),
		huh.NewConfirm().
			Title("Rewrite links between documents into page links?").
			Value(&cfg.Publish.RewriteLinks),
		huh.NewInput().
			Title("Diagram renderer command").
			Validate(requireValue("renderer command")).
			Value(&cfg.Diagrams.Renderer),
	).Title("Publishing")

	sf.form = huh.NewForm(confluenceGroup, publishGroup)
	return sf
}

// Form returns the underlying huh.Form.
func (s *SetupForm) Form() *huh.Form { return s.form }

// Config returns the config edited by the wizard.
func (s *SetupForm) Config() *config.Config { return s.cfg }

// Run shows the wizard on the terminal.
func (s *SetupForm) Run() error { return s.form.Run() }

// Save writes the config to the save path.
func (s *SetupForm) Save() error {
	s.cfg.Confluence.URL = strings.TrimRight(strings.TrimSpace(s.cfg.Confluence.URL), "/")
	s.cfg.Confluence.SpaceKey = strings.TrimSpace(s.cfg.Confluence.SpaceKey)
	s.cfg.Confluence.Username = strings.TrimSpace(s.cfg.Confluence.Username)
	return config.Save(s.savePath, s.cfg)
}

// IsCompleted returns true if the form has been submitted.
func (s *SetupForm) IsCompleted() bool { return s.form.State == huh.StateCompleted }

// IsAborted returns true if the form has been cancelled.
func (s *SetupForm) IsAborted() bool { return s.form.State == huh.StateAborted }

func validateWikiURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return errors.New("enter a full URL such as https://example.atlassian.net/wiki")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return errors.New("URL must start with https:// or http://")
	}
	return nil
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
