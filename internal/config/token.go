package config

import (
	"fmt"
)

// LookupFunc reports the value of a named variable and whether it was set.
type LookupFunc func(name string) (string, bool)

// ResolveAPIToken resolves the Confluence API token based on the given source.
// Supported sources: "env" (from the environment or the .env file) and
// "config" (from the config value). Tokens are never taken from the config
// file unless the source says so explicitly.
func ResolveAPIToken(source, configValue, envVar string, lookup LookupFunc) (string, error) {
	switch source {
	case "", "env":
		return resolveFromEnv(envVar, lookup)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("api_token_source is 'config' but no api_token value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown api_token_source: %q", source)
	}
}

func resolveFromEnv(envVar string, lookup LookupFunc) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val, ok := lookup(envVar)
	if !ok || val == "" {
		return "", fmt.Errorf("environment variable %s is not set: %w", envVar, ErrMissing)
	}
	return val, nil
}
