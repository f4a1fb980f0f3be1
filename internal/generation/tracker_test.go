package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

func TestTracker_Counters(t *testing.T) {
	tr := newTracker(3, time.Now())

	p := tr.Snapshot()
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 0, p.Completed)
	assert.Equal(t, 0, p.InProgress)

	tr.Started()
	tr.Started()
	p = tr.Snapshot()
	assert.Equal(t, 2, p.InProgress)

	tr.Finished(&domain.Outcome{JobID: "job_1", Attempt: 1, Success: true})
	p = tr.Snapshot()
	assert.Equal(t, 1, p.InProgress)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Successful)
	assert.Equal(t, 0, p.Failed)

	tr.Finished(&domain.Outcome{JobID: "job_2", Attempt: 1, Success: false, Error: "boom"})
	p = tr.Snapshot()
	assert.Equal(t, 0, p.InProgress)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 1, p.Successful)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, p.Completed, p.Successful+p.Failed)
}

func TestTracker_RetryKeepsCompletedSteady(t *testing.T) {
	tr := newTracker(1, time.Now())

	tr.Started()
	tr.RetryScheduled(&domain.Outcome{JobID: "job_1", Attempt: 1, Success: false, Error: "transient"})

	p := tr.Snapshot()
	assert.Equal(t, 0, p.InProgress)
	assert.Equal(t, 0, p.Completed, "a retried attempt must not count as completed")

	tr.Started()
	tr.Finished(&domain.Outcome{JobID: "job_1", Attempt: 2, Success: true})

	p = tr.Snapshot()
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Successful)

	// One outcome per attempt.
	assert.Len(t, tr.Outcomes(), 2)
}

func TestProgress_Derive(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)
	p := domain.Progress{Total: 4, Completed: 2, StartTime: start}
	p.Derive(start.Add(10 * time.Second))

	assert.InDelta(t, 50.0, p.Percentage, 0.001)
	assert.Equal(t, 10*time.Second, p.Elapsed)
	// 2 done in 10s -> 5s each -> 2 remaining take 10s.
	assert.Equal(t, 10*time.Second, p.EstimatedRemaining)
}

func TestProgress_DeriveEmptyBatch(t *testing.T) {
	p := domain.Progress{StartTime: time.Now()}
	assert.NotPanics(t, func() { p.Derive(time.Now()) })
	assert.Zero(t, p.Percentage)
	assert.Zero(t, p.EstimatedRemaining)
}
