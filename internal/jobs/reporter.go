package jobs

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

// Reporter publishes progress for one job. It is handed to the tool
// handler by the runner; handlers call Report at coarse milestones.
type Reporter struct {
	store  *Store
	events interfaces.EventService
	jobID  string
	logger arbor.ILogger
}

// NewReporter creates a progress reporter bound to a job id
func NewReporter(store *Store, events interfaces.EventService, jobID string, logger arbor.ILogger) *Reporter {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Reporter{
		store:  store,
		events: events,
		jobID:  jobID,
		logger: logger,
	}
}

// Report publishes a progress percentage for the job. Out-of-range
// values are a handler bug and fail fast with InvalidProgressError
// instead of being clamped. In-range values delegate to the store,
// which drops updates for unknown or terminal jobs.
func (r *Reporter) Report(progress int) error {
	if progress < 0 || progress > 100 {
		return &models.InvalidProgressError{Progress: progress}
	}

	r.store.UpdateProgress(r.jobID, progress)

	if r.events != nil {
		job, err := r.store.Get(r.jobID)
		if err == nil {
			r.events.Publish(context.Background(), interfaces.Event{
				Type:    interfaces.EventJobProgress,
				Payload: job,
			})
		}
	}

	return nil
}
