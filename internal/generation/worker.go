package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// workerLoop pulls jobs until the batch completes, is stopped or the
// context ends. The leading non-blocking select makes a stop win over
// queued work.
func (c *Coordinator) workerLoop(ctx context.Context, pool *Pool, idx int) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in generation worker",
				slog.Int("worker", idx),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	c.logger.Debug("Generation worker started", slog.Int("worker", idx))

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.doneCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-c.stopCh:
			c.logger.Debug("Generation worker stopping", slog.Int("worker", idx))
			return
		case <-c.doneCh:
			return
		case <-ctx.Done():
			return
		case job := <-c.queue:
			c.runJob(ctx, pool, job, idx)
		}
	}
}

// runJob executes one attempt and either requeues the job (attempt budget
// remaining) or finalizes its outcome.
func (c *Coordinator) runJob(ctx context.Context, pool *Pool, job *domain.Job, idx int) {
	batchID := c.ID()

	job.Status = domain.JobStatusInProgress
	c.tracker.Started()
	c.publishProgress(batchID, c.tracker, false)

	c.logger.Info("Processing job",
		slog.Int("worker", idx),
		slog.String("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
		slog.Int("max_attempts", job.MaxAttempts),
	)

	out := c.attempt(ctx, pool, job)

	if !out.Success && job.Attempt < job.MaxAttempts {
		c.logger.Warn("Attempt failed, requeuing job",
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.String("error", out.Error),
		)
		job.Attempt++
		job.Status = domain.JobStatusPending
		c.tracker.RetryScheduled(out)
		c.publishProgress(batchID, c.tracker, false)

		// Retries go to the back of the queue, behind untried jobs, and
		// skip the submission pacing delay. Capacity is guaranteed since
		// the job was just dequeued.
		select {
		case c.queue <- job:
		case <-c.stopCh:
			// Batch is stopping; the job is abandoned in status pending.
		}
		return
	}

	if out.Success {
		job.Status = domain.JobStatusCompleted
		c.logger.Info("Job completed",
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Int("artifacts", len(out.ArtifactPaths)),
			slog.Duration("duration", out.Duration),
		)
	} else {
		job.Status = domain.JobStatusFailed
		c.logger.Error("Job failed",
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.String("error", out.Error),
			slog.Any("reason", domain.ErrRetryExhausted),
		)
	}

	c.tracker.Finished(out)
	c.publishProgress(batchID, c.tracker, false)
	c.persistOutcome(batchID, job, out)

	if atomic.AddInt64(&c.remaining, -1) == 0 {
		close(c.doneCh)
	}
}

// attempt performs one execution attempt: acquire a session, run the
// executor under the per-job deadline, release the session on every path.
// Failures of any kind are recovered locally into a failed outcome; they
// never propagate out of the worker.
func (c *Coordinator) attempt(ctx context.Context, pool *Pool, job *domain.Job) (out *domain.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic during job execution",
				slog.String("job_id", job.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			out = c.failedOutcome(job, start, fmt.Errorf("executor panic: %v", r))
		}
	}()

	res, err := pool.Acquire(ctx, c.cfg.JobTimeout)
	if err != nil {
		return c.failedOutcome(job, start, err)
	}
	defer pool.Release(res)

	execCtx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	defer cancel()

	result, err := c.executor.Generate(execCtx, job, res)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrExecutionTimeout
		}
		return c.failedOutcome(job, start, err)
	}
	if result == nil {
		return c.failedOutcome(job, start, domain.NewExecutionError(errors.New("executor returned no outcome")))
	}

	result.JobID = job.ID
	result.Attempt = job.Attempt
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	if !result.Success && result.Error == "" {
		result.Error = "no artifact produced"
	}
	return result
}

func (c *Coordinator) failedOutcome(job *domain.Job, start time.Time, err error) *domain.Outcome {
	return &domain.Outcome{
		JobID:     job.ID,
		Attempt:   job.Attempt,
		Success:   false,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
		Error:     err.Error(),
	}
}

// persistOutcome hands a terminal outcome to the sink. The calls are
// fire-and-forget: errors are logged and swallowed so persistence can
// never abort a job. A detached context keeps a batch stop from cutting
// the write short.
func (c *Coordinator) persistOutcome(batchID string, job *domain.Job, out *domain.Outcome) {
	if c.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ref, err := c.sink.SaveResult(ctx, batchID, out)
	if err != nil {
		c.logger.Warn("Failed to save result",
			slog.String("batch_id", batchID),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	} else {
		c.logger.Debug("Result saved",
			slog.String("job_id", job.ID),
			slog.String("storage_ref", ref),
		)
	}

	if err := c.sink.UpdateJobStatus(ctx, batchID, job, out.Error); err != nil {
		c.logger.Warn("Failed to update job status",
			slog.String("batch_id", batchID),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}
