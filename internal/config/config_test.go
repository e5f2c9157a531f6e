package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/tokens"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "regex", cfg.Tokens.Strategy)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.HideErrorDetails)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 80, cfg.UI.WordWrap)
	assert.Equal(t, tokens.StrategyRegex, cfg.Counter().Strategy())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
tokens:
  strategy: whitespace
server:
  port: 9090
log:
  level: debug
ui:
  glamour_style: dracula
`)
	t.Setenv("CHARGEN_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "whitespace", cfg.Tokens.Strategy)
	assert.Equal(t, tokens.StrategyWhitespace, cfg.Counter().Strategy())
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "dracula", cfg.UI.GlamourStyle)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHARGEN_TOKEN_STRATEGY", "whitespace")
	t.Setenv("CHARGEN_EXPORT_DIR", "/tmp/out")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "whitespace", cfg.Tokens.Strategy)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "tokens:\n  strategy: bpe\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestValidatePort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestUsageListsVariables(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "CHARGEN_TOKEN_STRATEGY")
	assert.Contains(t, usage, "CHARGEN_PORT")
}
