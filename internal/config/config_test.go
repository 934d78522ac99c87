package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "active", c.SoftDelete.Column)
	assert.Equal(t, 0.2, c.LLM.Temperature)
}

func TestLoadFile_PartialOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	data := `
log_level: debug
soft_delete:
  column: is_live
  tables:
    audit_events: visible
llm:
  model: gpt-4o-mini
  timeout: 10s
server:
  session_ttl: 30m
`
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))

	c, err := LoadFile(p)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "table", c.Output)
	assert.Equal(t, "is_live", c.SoftDelete.Column)
	assert.Equal(t, "visible", c.SoftDelete.ColumnFor("audit_events"))
	assert.Equal(t, "is_live", c.SoftDelete.ColumnFor("users"))
	assert.Equal(t, "gpt-4o-mini", c.LLM.Model)
	assert.Equal(t, Default().LLM.Endpoint, c.LLM.Endpoint)
	assert.Equal(t, 10*time.Second, c.LLM.Timeout)
	assert.Equal(t, 30*time.Minute, c.Server.SessionTTL)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr)
}

func TestLoadFile_EmptyColumnFallsBack(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte("soft_delete:\n  column: \"\"\n"), 0o600))

	c, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "active", c.SoftDelete.Column)
}

func TestLoadFile_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte("log_level: [unterminated"), 0o600))

	_, err := LoadFile(p)
	require.Error(t, err)
}

func TestSaveFile_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	c := Default()
	c.Output = "json"
	c.SoftDelete.Tables = map[string]string{"orders": "live"}

	require.NoError(t, SaveFile(p, c))
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoad_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c.LogLevel = "warn"
	require.NoError(t, Save(c))
	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", again.LogLevel)
}
