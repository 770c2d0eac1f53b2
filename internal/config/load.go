package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that carry the Confluence endpoint and credentials.
const (
	EnvURL      = "CONFLUENCE_URL"
	EnvSpaceKey = "CONFLUENCE_SPACE_KEY"
	EnvUsername = "CONFLUENCE_USERNAME"
	EnvAPIToken = "CONFLUENCE_API_TOKEN"
)

// ErrMissing is returned when a setting required for publishing is absent.
var ErrMissing = errors.New("missing required setting")

// Load builds a Config from defaults, the TOML file at path, the env file at
// envFile and the process environment, in increasing order of precedence.
// A missing config file or env file is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// A languages table in the file replaces the defaults.
		defaultLanguages := cfg.Diagrams.Languages
		cfg.Diagrams.Languages = nil
		md, err := toml.DecodeFile(path, cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err != nil || !md.IsDefined("diagrams", "languages") {
			cfg.Diagrams.Languages = defaultLanguages
		}
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v, true
		}
		v, ok := fileEnv[name]
		return v, ok
	}

	applyEnv(cfg, lookup)

	if cfg.Confluence.APITokenSource != "config" {
		// Only a resolved token is kept; a token written into the config file
		// is ignored unless the file opts into it.
		cfg.Confluence.APIToken = ""
		if token, err := ResolveAPIToken(cfg.Confluence.APITokenSource, "", EnvAPIToken, lookup); err == nil {
			cfg.Confluence.APIToken = token
		}
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		cfg.Confluence.URL = v
	}
	if v, ok := lookup(EnvSpaceKey); ok && v != "" {
		cfg.Confluence.SpaceKey = v
	}
	if v, ok := lookup(EnvUsername); ok && v != "" {
		cfg.Confluence.Username = v
	}
}

// Validate reports every setting that publishing needs but the Config lacks.
func (c *Config) Validate() error {
	var missing []string
	if c.Confluence.URL == "" {
		missing = append(missing, EnvURL)
	}
	if c.Confluence.SpaceKey == "" {
		missing = append(missing, EnvSpaceKey)
	}
	if c.Confluence.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if c.Confluence.APIToken == "" {
		missing = append(missing, EnvAPIToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}
