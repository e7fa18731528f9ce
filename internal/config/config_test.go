package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.GetAddr())
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 10, cfg.Execution.SuiteBlockPageSize)
	assert.Equal(t, 10, cfg.Execution.CaseBlockPageSize)
	assert.Equal(t, 50, cfg.Execution.ActionPageSize)
	assert.Equal(t, "continue", cfg.Execution.SuiteFailurePolicy)
	assert.Equal(t, "abort", cfg.Execution.CaseFailurePolicy)
	assert.Equal(t, "reduce", cfg.Execution.RunStatus)
	assert.Zero(t, cfg.Execution.RunTimeout())
	assert.Equal(t, time.Minute, cfg.Database.BusyTimeout())
}

func TestLoadConfig_BusyTimeoutCoversRunTimeout(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[execution]\nrun_timeout_seconds = 600\n"))
	require.NoError(t, err)
	assert.Equal(t, 660*time.Second, cfg.Database.BusyTimeout())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ORCA_SERVER_PORT", "7000")
	t.Setenv("ORCA_DRIVER_URL", "http://grid:4444")

	cfg, err := LoadConfig(writeConfig(t, "[driver]\nurl = \"http://file:4444\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "http://grid:4444", cfg.Driver.URL)
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[execution]\ncase_failure_policy = \"retry\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case_failure_policy")
}

func TestLoadConfig_InvalidRunStatus(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[execution]\nrun_status = \"never\"\n"))
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadConfig_EvidenceNeedsEndpoint(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[evidence]\nenabled = true\n"))
	require.Error(t, err)
}

func TestLoadOrDefault_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ORCA_DRIVER_URL", "http://grid:4444")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "http://grid:4444", cfg.Driver.URL)
}
