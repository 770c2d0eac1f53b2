package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestResolveAPITokenFromEnv(t *testing.T) {
	lookup := mapLookup(map[string]string{"TEST_TOKEN": "tok-12345"})
	token, err := ResolveAPIToken("env", "", "TEST_TOKEN", lookup)
	require.NoError(t, err)
	assert.Equal(t, "tok-12345", token)
}

func TestResolveAPITokenDefaultsToEnv(t *testing.T) {
	lookup := mapLookup(map[string]string{"TEST_TOKEN": "tok"})
	token, err := ResolveAPIToken("", "ignored", "TEST_TOKEN", lookup)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestResolveAPITokenFromConfig(t *testing.T) {
	token, err := ResolveAPIToken("config", "tok-from-config", "", mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "tok-from-config", token)
}

func TestResolveAPITokenMissingEnvVar(t *testing.T) {
	_, err := ResolveAPIToken("env", "", "NONEXISTENT_TOKEN_VAR", mapLookup(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestResolveAPITokenEmptyConfig(t *testing.T) {
	_, err := ResolveAPIToken("config", "", "", mapLookup(nil))
	assert.Error(t, err)
}

func TestResolveAPITokenUnknownSource(t *testing.T) {
	_, err := ResolveAPIToken("keyring", "", "X", mapLookup(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown api_token_source")
}
