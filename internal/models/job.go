package models

import (
	"time"
)

// JobStatus represents the lifecycle state of a conversion job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal returns true if the status is completed or failed
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobResult holds the output of a successfully completed job.
// OutputPath points at the generated artifact on disk; Data carries
// inline results for tools that produce structured output instead of
// (or in addition to) a file.
type JobResult struct {
	OutputPath string                 `json:"output_path,omitempty"`
	Filename   string                 `json:"filename,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Job represents an asynchronous conversion job tracked in memory.
// A job is created in processing state and transitions exactly once to
// completed or failed. Progress is monotonic within [0,100].
type Job struct {
	ID            string     `json:"id"`
	ToolName      string     `json:"tool_name"`
	Status        JobStatus  `json:"status"`
	Progress      int        `json:"progress"`
	StartTime     time.Time  `json:"start_time"`
	EstimatedTime int        `json:"estimated_time"` // seconds
	Result        *JobResult `json:"result,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// IsTerminal returns true if the job has reached a final state
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// ElapsedSeconds returns the wall-clock seconds since the job started
func (j *Job) ElapsedSeconds() float64 {
	return time.Since(j.StartTime).Seconds()
}

// Clone returns a deep copy of the job so callers can read a snapshot
// without holding store locks
func (j *Job) Clone() *Job {
	clone := *j
	if j.Result != nil {
		result := *j.Result
		if len(j.Result.Data) > 0 {
			result.Data = make(map[string]interface{}, len(j.Result.Data))
			for k, v := range j.Result.Data {
				result.Data[k] = v
			}
		}
		clone.Result = &result
	}
	return &clone
}

// JobStats summarizes the job store for the stats endpoint
type JobStats struct {
	Total      int `json:"total"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
