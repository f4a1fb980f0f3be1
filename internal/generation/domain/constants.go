package domain

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Batch state constants
const (
	BatchStateRunning   = "running"
	BatchStateStopped   = "stopped"
	BatchStateCompleted = "completed"
)
