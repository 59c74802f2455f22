package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

// Runner executes tool handlers off the request path. Each submission
// gets its own goroutine gated by a bounded semaphore so heavy
// converters cannot starve the host. The runner guarantees every
// submitted job reaches a terminal state: handler errors and panics
// are both translated into a failed job.
type Runner struct {
	store    *Store
	registry interfaces.ToolRegistry
	events   interfaces.EventService
	logger   arbor.ILogger
	sem      chan struct{}
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewRunner creates a job runner with the given concurrency bound
func NewRunner(store *Store, registry interfaces.ToolRegistry, events interfaces.EventService, concurrency int, timeout time.Duration, logger arbor.ILogger) *Runner {
	if logger == nil {
		logger = common.GetLogger()
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Runner{
		store:    store,
		registry: registry,
		events:   events,
		logger:   logger,
		sem:      make(chan struct{}, concurrency),
		timeout:  timeout,
	}
}

// Submit resolves the tool, creates the job record, and schedules
// background execution. Returns immediately with the new job.
// Resolution failures surface synchronously and create no job.
func (r *Runner) Submit(toolName string, req *models.ToolRequest) (*models.Job, error) {
	handler, tool, err := r.registry.Resolve(toolName)
	if err != nil {
		return nil, err
	}

	id := common.NewJobID()
	job, err := r.store.Create(id, toolName, tool.EstimatedSeconds)
	if err != nil {
		return nil, err
	}

	req.JobID = id
	req.ToolName = toolName

	r.publish(interfaces.EventJobCreated, job)

	r.wg.Add(1)
	go r.execute(id, handler, req)

	r.logger.Info().
		Str("job_id", id).
		Str("tool", toolName).
		Msg("Job submitted")

	return job, nil
}

// execute runs a single handler to completion. The deferred recovery
// block is the guarantee that a crashing handler still flips the job
// to failed instead of leaving it processing forever.
func (r *Runner) execute(jobID string, handler interfaces.ToolHandler, req *models.ToolRequest) {
	defer r.wg.Done()

	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	defer func() {
		if rec := recover(); rec != nil {
			stack := common.GetStackTrace()
			r.logger.Error().
				Str("job_id", jobID).
				Str("panic", fmt.Sprintf("%v", rec)).
				Str("stack", stack).
				Msg("Tool handler panicked")
			r.finish(jobID, nil, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	reporter := NewReporter(r.store, r.events, jobID, r.logger)

	started := time.Now()
	result, err := handler(ctx, req, reporter)
	if err != nil {
		r.logger.Warn().
			Str("job_id", jobID).
			Str("tool", req.ToolName).
			Err(err).
			Msg("Tool handler failed")
		r.finish(jobID, nil, err.Error())
		return
	}

	r.logger.Info().
		Str("job_id", jobID).
		Str("tool", req.ToolName).
		Str("duration", time.Since(started).Round(time.Millisecond).String()).
		Msg("Tool handler completed")
	r.finish(jobID, result, "")
}

// finish transitions the job to its terminal state and publishes the
// matching lifecycle event
func (r *Runner) finish(jobID string, result *models.JobResult, errMsg string) {
	r.store.Complete(jobID, result, errMsg)

	job, err := r.store.Get(jobID)
	if err != nil {
		return
	}

	if errMsg != "" {
		r.publish(interfaces.EventJobFailed, job)
	} else {
		r.publish(interfaces.EventJobCompleted, job)
	}
}

func (r *Runner) publish(eventType interfaces.EventType, job *models.Job) {
	if r.events == nil {
		return
	}
	r.events.Publish(context.Background(), interfaces.Event{
		Type:    eventType,
		Payload: job,
	})
}

// Registry exposes the tool registry for pre-submit checks at the
// HTTP layer.
func (r *Runner) Registry() interfaces.ToolRegistry {
	return r.registry
}

// Wait blocks until all in-flight jobs have finished. Used during
// graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}
