package sweeper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/common"
)

func newTestSweeper(t *testing.T, dir string, maxAge string) *Sweeper {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.UploadDir = dir
	cfg.Storage.OutputDir = filepath.Join(dir, "does-not-exist")
	cfg.Retention.MaxAge = maxAge
	return NewSweeper(cfg, nil)
}

func writeFileWithAge(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestRunNow_RemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	expired := writeFileWithAge(t, dir, "job_old_report.pdf", 48*time.Hour)
	fresh := writeFileWithAge(t, dir, "job_new_report.pdf", time.Minute)

	s := newTestSweeper(t, dir, "24h")
	stats := s.RunNow()

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, 0, stats.Errors)

	assert.NoFileExists(t, expired)
	assert.FileExists(t, fresh)
}

func TestRunNow_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	s := newTestSweeper(t, dir, "1h")
	stats := s.RunNow()

	assert.Equal(t, 0, stats.Scanned)
	assert.Equal(t, 0, stats.Removed)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestRunNow_MissingDirIsNotAnError(t *testing.T) {
	s := newTestSweeper(t, filepath.Join(t.TempDir(), "missing"), "1h")
	stats := s.RunNow()
	assert.Equal(t, 0, stats.Errors)
}

func TestStartStop(t *testing.T) {
	s := newTestSweeper(t, t.TempDir(), "24h")
	require.NoError(t, s.Start())
	s.Stop()
}

func TestNewSweeper_InvalidMaxAgeFallsBack(t *testing.T) {
	s := newTestSweeper(t, t.TempDir(), "bogus")
	assert.Equal(t, 24*time.Hour, s.maxAge)
}
