package dto

// StartGenerationRequest starts a multi-session batch generation.
// Prompts come either from a prompt file or inline.
type StartGenerationRequest struct {
	PromptFile string            `json:"prompt_file"`
	Prompts    []string          `json:"prompts"`
	Platform   string            `json:"platform" binding:"required"`
	Profiles   []string          `json:"profiles" binding:"required,min=1"`
	Parameters map[string]string `json:"parameters"`
	Config     *BatchConfigDTO   `json:"thread_config"`
}

// BatchConfigDTO overrides the configured scheduling defaults per batch.
type BatchConfigDTO struct {
	MaxWorkers      int     `json:"max_workers"`
	TimeoutSeconds  int     `json:"timeout_seconds"`
	RetryAttempts   int     `json:"retry_attempts"`
	SubmissionDelay float64 `json:"delay_between_submissions_seconds"`
}

// StartGenerationResponse reports the started batch.
type StartGenerationResponse struct {
	BatchID      string   `json:"batch_id"`
	TotalPrompts int      `json:"total_prompts"`
	Workers      int      `json:"workers"`
	Profiles     []string `json:"profiles"`
}

// ProgressResponse is the polled progress shape.
type ProgressResponse struct {
	BatchID            string  `json:"batch_id"`
	Total              int     `json:"total"`
	Completed          int     `json:"completed"`
	Successful         int     `json:"successful"`
	Failed             int     `json:"failed"`
	InProgress         int     `json:"in_progress"`
	ProgressPercentage float64 `json:"progress_percentage"`
	ElapsedSeconds     float64 `json:"elapsed_time"`
	EstimatedRemaining float64 `json:"estimated_remaining"`
	IsRunning          bool    `json:"is_running"`
}

// StartSessionRequest registers a browser session for a profile.
type StartSessionRequest struct {
	ProfileName string `json:"profile_name" binding:"required"`
}
