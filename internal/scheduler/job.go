package scheduler

import (
	"context"
	"time"
)

// Job is a schedulable unit of work.
type Job interface {
	// Name returns the job name, unique within one scheduler.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression, with a seconds field.
	// Examples: "0 30 6 * * 1-5", "@daily".
	Schedule() string
}

// JobResult is one finished execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the per-job result ring.
const maxHistory = 100

// JobHistory keeps the most recent results of one job.
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest beyond the cap.
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns the most recent result, or a zero result when the job has
// never run.
func (h *JobHistory) Latest() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}
