package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifex.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8, cfg.Jobs.Concurrency)
	assert.Equal(t, int64(100*1024*1024), cfg.Storage.MaxUploadSize)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeoutDuration())
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfigFile(t, `
[server]
port = 9000
host = "0.0.0.0"
`)
	second := filepath.Join(t.TempDir(), "override.toml")
	require.NoError(t, os.WriteFile(second, []byte(`
[server]
port = 9100
`), 0o644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/artifex.toml")
	require.Error(t, err)
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	path := writeConfigFile(t, "not [valid toml")
	_, err := LoadFromFiles(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARTIFEX_SERVER_PORT", "9999")
	t.Setenv("ARTIFEX_JOBS_CONCURRENCY", "4")
	t.Setenv("ARTIFEX_RETENTION_ENABLED", "true")
	t.Setenv("ARTIFEX_LOG_OUTPUT", "stdout, file")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Jobs.Concurrency)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7070, "127.0.0.1")
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestJobTimeoutDuration_Fallback(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.Jobs.JobTimeout = "90s"
	assert.Equal(t, 90*time.Second, cfg.JobTimeoutDuration())

	cfg.Jobs.JobTimeout = "garbage"
	assert.Equal(t, 10*time.Minute, cfg.JobTimeoutDuration())

	cfg.Jobs.JobTimeout = "-5s"
	assert.Equal(t, 10*time.Minute, cfg.JobTimeoutDuration())
}

func TestValidateRetentionSchedule(t *testing.T) {
	assert.NoError(t, ValidateRetentionSchedule("0 0 * * * *"))
	assert.Error(t, ValidateRetentionSchedule("every hour"))
}

func TestNewJobID(t *testing.T) {
	id := NewJobID()
	assert.True(t, len(id) > 4)
	assert.Equal(t, "job_", id[:4])
	assert.NotEqual(t, id, NewJobID())
}
