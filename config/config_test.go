package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	path := writeConfig(t, `
cognito:
  user_pool_id: us-west-2_abc
  client_id: client-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendDynamo, cfg.Backend)
	assert.Equal(t, ProviderCognito, cfg.Provider)
	assert.Equal(t, "TodoTable", cfg.Dynamo.Table)
	assert.Equal(t, "us-west-2", cfg.AWS.Region)
	assert.Equal(t, "US", cfg.PhoneRegion)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "client-1", cfg.Cognito.ClientID)
}

func TestLoadLocalSetup(t *testing.T) {
	path := writeConfig(t, `
backend: sqlite
provider: local
debug: true
local:
  dsn: "file::memory:"
  signing_key: dev-key
storage:
  path: /tmp/todos-storage.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, ProviderLocal, cfg.Provider)
	assert.Equal(t, "file::memory:", cfg.Local.DSN)
	assert.Equal(t, "dev-key", cfg.Local.SigningKey)
	assert.Equal(t, "/tmp/todos-storage.json", cfg.Storage.Path)
	assert.True(t, cfg.Debug)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
dynamo:
  table: FromFile
cognito:
  client_id: from-file
`)
	t.Setenv("TODOS_TABLE", "FromEnv")
	t.Setenv("TODOS_CLIENT_ID", "from-env")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("TODOS_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.Dynamo.Table)
	assert.Equal(t, "from-env", cfg.Cognito.ClientID)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "backend: redis\ncognito:\n  client_id: c\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "provider: local\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "provider: cognito\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "backend: [\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPathPrefersEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/todos/custom.yaml")
	assert.Equal(t, "/etc/todos/custom.yaml", Path())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	cfg := Default()
	cfg.Provider = ProviderLocal
	cfg.Local.SigningKey = "k"

	path := filepath.Join(t.TempDir(), "nested", "todos.yaml")
	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
