package generation

import (
	"sync"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// tracker keeps the batch counters and per-attempt outcomes under a single
// mutex so observers never see completed > total or a negative in_progress.
type tracker struct {
	mu       sync.Mutex
	progress domain.Progress
	outcomes []*domain.Outcome
}

func newTracker(total int, start time.Time) *tracker {
	return &tracker{
		progress: domain.Progress{
			Total:     total,
			StartTime: start,
		},
	}
}

// Started records a job moving pending -> in_progress.
func (t *tracker) Started() {
	t.mu.Lock()
	t.progress.InProgress++
	t.mu.Unlock()
}

// RetryScheduled records a failed attempt going back to pending. The
// attempt outcome is kept so the batch history shows one outcome per
// attempt, but the completed counters do not move.
func (t *tracker) RetryScheduled(out *domain.Outcome) {
	t.mu.Lock()
	t.progress.InProgress--
	t.outcomes = append(t.outcomes, out)
	t.mu.Unlock()
}

// Finished records a terminal outcome.
func (t *tracker) Finished(out *domain.Outcome) {
	t.mu.Lock()
	t.progress.InProgress--
	t.progress.Completed++
	if out.Success {
		t.progress.Successful++
	} else {
		t.progress.Failed++
	}
	t.outcomes = append(t.outcomes, out)
	t.mu.Unlock()
}

// Snapshot returns the current progress with derived fields filled in.
func (t *tracker) Snapshot() domain.Progress {
	t.mu.Lock()
	p := t.progress
	t.mu.Unlock()
	p.Derive(time.Now())
	return p
}

// Outcomes returns a copy of every attempt outcome recorded so far.
func (t *tracker) Outcomes() []*domain.Outcome {
	t.mu.Lock()
	out := make([]*domain.Outcome, len(t.outcomes))
	copy(out, t.outcomes)
	t.mu.Unlock()
	return out
}
