package interfaces

import (
	"context"

	"github.com/ternarybob/artifex/internal/models"
)

// ProgressReporter is handed to tool handlers so they can publish
// intermediate progress for a running job. Report rejects values
// outside [0,100]; updates for jobs already in a terminal state are
// silently ignored by the store.
type ProgressReporter interface {
	// Report publishes a progress percentage for the job.
	// Returns *models.InvalidProgressError when progress is out of range.
	Report(progress int) error
}

// ToolHandler executes a single conversion tool. It returns the job
// result on success. The runner translates a returned error or panic
// into a failed job; handlers never touch job state directly beyond
// the reporter.
type ToolHandler func(ctx context.Context, req *models.ToolRequest, progress ProgressReporter) (*models.JobResult, error)

// ToolRegistry resolves tool names to handlers using exact key match
type ToolRegistry interface {
	Resolve(name string) (ToolHandler, *models.Tool, error)
	List() []*models.Tool
	EstimatedSeconds(name string) int
}
