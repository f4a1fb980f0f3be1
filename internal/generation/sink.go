package generation

import (
	"context"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// ResultSink consumes terminal outcomes for persistence. Workers call it
// fire-and-forget: sink errors are logged, never retried, and never block
// or fail the job that produced the outcome.
type ResultSink interface {
	// SaveResult persists one terminal outcome and returns a storage
	// reference for it.
	SaveResult(ctx context.Context, batchID string, out *domain.Outcome) (string, error)

	// UpdateJobStatus records the originating job's terminal status.
	UpdateJobStatus(ctx context.Context, batchID string, job *domain.Job, errDetail string) error
}
