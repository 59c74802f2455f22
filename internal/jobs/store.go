package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"

	"github.com/ternarybob/artifex/internal/models"
)

// Store is the in-memory job state table. Job records are ephemeral
// and live for the duration of the process; there is no eviction.
// All access goes through the synchronized methods, the map is never
// exposed to callers.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	logger arbor.ILogger
}

// NewStore creates an empty job store
func NewStore(logger arbor.ILogger) *Store {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Store{
		jobs:   make(map[string]*models.Job),
		logger: logger,
	}
}

// Create inserts a new job record in processing state with zero
// progress. Returns models.ErrDuplicateJobID if the id is already
// present; id generation makes that unreachable in practice, but the
// precondition is still checked.
func (s *Store) Create(id, toolName string, estimatedTime int) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return nil, models.ErrDuplicateJobID
	}

	job := &models.Job{
		ID:            id,
		ToolName:      toolName,
		Status:        models.JobStatusProcessing,
		Progress:      0,
		StartTime:     time.Now(),
		EstimatedTime: estimatedTime,
	}
	s.jobs[id] = job

	s.logger.Debug().
		Str("job_id", id).
		Str("tool", toolName).
		Int("estimated_time", estimatedTime).
		Msg("Job created")

	return job.Clone(), nil
}

// UpdateProgress records a progress value for a job. Updates to
// unknown ids are silently dropped, updates to terminal jobs are
// ignored, and a value lower than the current progress is ignored so
// observed progress never decreases.
func (s *Store) UpdateProgress(id string, progress int) {
	if progress < 0 || progress > 100 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return
	}
	if job.IsTerminal() {
		return
	}
	if progress < job.Progress {
		return
	}

	job.Progress = progress
}

// Complete transitions a job to its terminal state. A non-empty
// errMsg marks the job failed, otherwise it is completed with the
// given result. Progress is forced to 100 either way. The first
// terminal write wins; later calls are no-ops.
func (s *Store) Complete(id string, result *models.JobResult, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return
	}
	if job.IsTerminal() {
		return
	}

	job.Progress = 100
	if errMsg != "" {
		job.Status = models.JobStatusFailed
		job.Error = errMsg
		job.Result = nil
	} else {
		job.Status = models.JobStatusCompleted
		job.Result = result
		job.Error = ""
	}
}

// Get returns a snapshot of a job or models.ErrJobNotFound
func (s *Store) Get(id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, models.ErrJobNotFound
	}
	return job.Clone(), nil
}

// List returns snapshots of all jobs, newest first
func (s *Store) List() []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.After(result[j].StartTime)
	})

	return result
}

// Stats returns aggregate counts by status
func (s *Store) Stats() models.JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.JobStats{Total: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case models.JobStatusProcessing:
			stats.Processing++
		case models.JobStatusCompleted:
			stats.Completed++
		case models.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
