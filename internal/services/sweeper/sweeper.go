package sweeper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// Sweeper removes uploaded and generated files past their retention
// age on a cron schedule. Job records live in memory and vanish on
// restart; the sweeper keeps the file-side footprint bounded to match.
type Sweeper struct {
	dirs     []string
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
	logger   arbor.ILogger
}

// SweepStats reports the outcome of a single sweep run.
type SweepStats struct {
	Scanned int
	Removed int
	Errors  int
}

// NewSweeper creates an artifact sweeper from application config.
func NewSweeper(cfg *common.Config, logger arbor.ILogger) *Sweeper {
	if logger == nil {
		logger = common.GetLogger()
	}

	maxAge := 24 * time.Hour
	if d, err := time.ParseDuration(cfg.Retention.MaxAge); err == nil && d > 0 {
		maxAge = d
	}

	return &Sweeper{
		dirs:     []string{cfg.Storage.UploadDir, cfg.Storage.OutputDir},
		maxAge:   maxAge,
		schedule: cfg.Retention.Schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.WithPrefix("sweeper"),
	}
}

// Start begins scheduled sweeps.
func (s *Sweeper) Start() error {
	schedule := s.schedule
	if schedule == "" {
		// Default: hourly
		schedule = "0 0 * * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Dur("max_age", s.maxAge).
		Msg("Artifact sweeper started")

	return nil
}

// Stop stops the scheduler. Waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Artifact sweeper stopped")
}

// RunNow performs a single sweep across the configured directories.
func (s *Sweeper) RunNow() SweepStats {
	cutoff := time.Now().Add(-s.maxAge)
	var stats SweepStats

	for _, dir := range s.dirs {
		s.sweepDir(dir, cutoff, &stats)
	}

	if stats.Removed > 0 || stats.Errors > 0 {
		s.logger.Info().
			Int("scanned", stats.Scanned).
			Int("removed", stats.Removed).
			Int("errors", stats.Errors).
			Msg("Sweep completed")
	}

	return stats
}

func (s *Sweeper) sweepDir(dir string, cutoff time.Time, stats *SweepStats) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to read sweep directory")
			stats.Errors++
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			stats.Errors++
			continue
		}

		stats.Scanned++
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove expired file")
			stats.Errors++
			continue
		}
		stats.Removed++

		s.logger.Debug().
			Str("path", path).
			Str("modified", info.ModTime().Format(time.RFC3339)).
			Msg("Removed expired file")
	}
}
