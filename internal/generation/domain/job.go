package domain

import "time"

// Job is one generation task inside a batch. A job is owned by exactly one
// worker while in_progress and is only mutated by that worker.
type Job struct {
	ID          string
	Prompt      string
	Category    string
	Parameters  map[string]string
	Attempt     int // starts at 1
	MaxAttempts int
	Status      string
	CreatedAt   time.Time
}

// Outcome is the terminal record of one execution attempt. Outcomes, not
// jobs, are what get handed to the result sink.
type Outcome struct {
	JobID         string
	Attempt       int
	Success       bool
	ArtifactPaths []string
	Duration      time.Duration
	Timestamp     time.Time
	Error         string
}

// Resource is an exclusively-held execution context (a live browser
// session bound to a Chrome profile). The pool tracks availability only;
// a resource handed back in a broken state is the releaser's problem.
type Resource interface {
	ProfileName() string
}
