package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_ANISENSE_KEY", "sk-test-123")
	t.Setenv("TEST_ANISENSE_PORT", "")

	path := writeConfig(t, `
server:
  host: "0.0.0.0"
  port: ${TEST_ANISENSE_PORT:-9090}
model:
  api_key: "${TEST_ANISENSE_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.Model.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port, "unset var falls back to the ${VAR:-default} default")
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
}

func TestLoad_DefaultWinsOnlyWhenUnset(t *testing.T) {
	t.Setenv("TEST_ANISENSE_LEVEL", "debug")

	path := writeConfig(t, `
logger:
  level: "${TEST_ANISENSE_LEVEL:-info}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, DefaultAniListEndpoint, cfg.AniList.Endpoint)
	assert.Equal(t, DefaultLinkupEndpoint, cfg.Search.BaseURL)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.AniList.Timeout)
	assert.Equal(t, "npx", cfg.MCP.Command)
	assert.Equal(t, []string{"-y", "anilist-mcp"}, cfg.MCP.Args)
	assert.Equal(t, "tags.json", cfg.TagsFile)
}

func TestLoad_SecretsFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("LINKUP_API_KEY", "lk-from-env")

	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Model.APIKey)
	assert.Equal(t, "lk-from-env", cfg.Search.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Model.APIKey = "sk"
	cfg.Search.APIKey = "lk"
	require.NoError(t, cfg.Validate())

	cfg.Model.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.Model.APIKey = "sk"
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())
}
