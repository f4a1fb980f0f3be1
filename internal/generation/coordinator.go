package generation

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
	"github.com/google/uuid"
)

// BatchConfig holds the scheduling knobs for one batch.
type BatchConfig struct {
	MaxWorkers      int           // upper bound on parallel workers
	JobTimeout      time.Duration // bounds both session acquire and one execution attempt
	RetryAttempts   int           // max attempts per job
	SubmissionDelay time.Duration // pause between successive submissions
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 3
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 300 * time.Second
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 2
	}
	// Zero means no pacing; the configured 1s default lives in the config
	// layer. Negative values are clamped rather than defaulted.
	if c.SubmissionDelay < 0 {
		c.SubmissionDelay = 0
	}
	return c
}

// CoordinatorConfig wires one coordinator's collaborators.
type CoordinatorConfig struct {
	Logger     *slog.Logger
	Executor   Executor
	Sink       ResultSink         // optional
	Notifier   *Notifier          // optional
	OnTerminal func(batchID string) // optional, invoked once when the batch ends
	Batch      BatchConfig
}

// Coordinator owns one batch: its job queue, its worker pool and its
// lifecycle. Jobs are submitted in list order with a fixed pacing delay;
// completion order is unordered. A batch that contains failed jobs still
// finishes in state "completed" — failure is only visible per outcome and
// in the failed counter.
type Coordinator struct {
	logger     *slog.Logger
	executor   Executor
	sink       ResultSink
	notifier   *Notifier
	onTerminal func(string)
	cfg        BatchConfig

	mu      sync.Mutex
	id      string
	state   string
	tracker *tracker

	queue     chan *domain.Job
	stopCh    chan struct{}
	stopOnce  sync.Once
	doneCh    chan struct{}
	finished  chan struct{}
	remaining int64
	wg        sync.WaitGroup
}

// NewCoordinator creates a coordinator for a single batch. Executor is
// required; sink, notifier and the terminal hook are optional.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		logger:     logger,
		executor:   cfg.Executor,
		sink:       cfg.Sink,
		notifier:   cfg.Notifier,
		onTerminal: cfg.OnTerminal,
		cfg:        cfg.Batch.withDefaults(),
	}
}

// Start begins batch execution and returns the batch id synchronously.
// Jobs execute in the background; progress is observable via Progress and
// the notifier. Starting a coordinator that is already running returns
// domain.ErrBatchActive.
func (c *Coordinator) Start(ctx context.Context, jobs []*domain.Job, pool *Pool) (string, error) {
	if len(jobs) == 0 {
		return "", domain.ErrNoPendingJobs
	}
	if pool == nil || pool.Size() == 0 {
		return "", domain.ErrResourceUnavailable
	}

	c.mu.Lock()
	if c.state == domain.BatchStateRunning {
		c.mu.Unlock()
		return "", domain.ErrBatchActive
	}
	c.id = "batch_" + uuid.NewString()
	c.state = domain.BatchStateRunning
	c.tracker = newTracker(len(jobs), time.Now())
	// Requeues only happen after a dequeue, so queue occupancy never
	// exceeds the initial job count.
	c.queue = make(chan *domain.Job, len(jobs))
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.finished = make(chan struct{})
	c.stopOnce = sync.Once{}
	atomic.StoreInt64(&c.remaining, int64(len(jobs)))
	batchID := c.id
	// finalize runs past the terminal state transition, at which point a
	// new Start may reassign these fields; it must only see this batch's.
	tr := c.tracker
	queue := c.queue
	stopCh := c.stopCh
	doneCh := c.doneCh
	finished := c.finished
	c.mu.Unlock()

	for _, job := range jobs {
		if job.Attempt < 1 {
			job.Attempt = 1
		}
		if job.MaxAttempts <= 0 {
			job.MaxAttempts = c.cfg.RetryAttempts
		}
		job.Status = domain.JobStatusPending
	}

	workers := c.cfg.MaxWorkers
	if pool.Size() < workers {
		workers = pool.Size()
	}

	c.logger.Info("Starting batch generation",
		slog.String("batch_id", batchID),
		slog.Int("jobs", len(jobs)),
		slog.Int("workers", workers),
		slog.Int("sessions", pool.Size()),
	)

	c.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go c.workerLoop(ctx, pool, i)
	}

	go c.dispatch(ctx, jobs, queue, stopCh)
	go c.finalize(batchID, tr, stopCh, doneCh, finished)

	return batchID, nil
}

// dispatch submits jobs in list order, pacing successive submissions to
// avoid a session stampede. Pacing does not throttle execution time. Like
// finalize, it holds this batch's channels as arguments: it can outlive
// the stopped batch's terminal transition and must never touch a
// successor's queue.
func (c *Coordinator) dispatch(ctx context.Context, jobs []*domain.Job, queue chan *domain.Job, stopCh chan struct{}) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for i, job := range jobs {
		select {
		case <-stopCh:
			c.logger.Info("Submission stopped, abandoning pending jobs",
				slog.Int("submitted", i),
				slog.Int("abandoned", len(jobs)-i),
			)
			return
		case <-ctx.Done():
			return
		case queue <- job:
		}

		if c.cfg.SubmissionDelay > 0 && i < len(jobs)-1 {
			timer.Reset(c.cfg.SubmissionDelay)
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}
}

// finalize waits for the batch to end, settles the terminal state and
// fires the terminal hook exactly once. It works on the channels and
// tracker captured at Start: once the state leaves running, a new Start
// may reassign the coordinator's fields while this goroutine is still
// publishing and closing for the old batch.
func (c *Coordinator) finalize(batchID string, tr *tracker, stopCh, doneCh, finished chan struct{}) {
	var stopped bool
	select {
	case <-doneCh:
	case <-stopCh:
		stopped = true
	}
	c.wg.Wait()

	c.mu.Lock()
	if stopped {
		c.state = domain.BatchStateStopped
	} else {
		c.state = domain.BatchStateCompleted
	}
	state := c.state
	c.mu.Unlock()

	progress := tr.Snapshot()
	c.logger.Info("Batch generation finished",
		slog.String("batch_id", batchID),
		slog.String("state", state),
		slog.Int("successful", progress.Successful),
		slog.Int("failed", progress.Failed),
		slog.Duration("elapsed", progress.Elapsed),
	)

	c.publishProgress(batchID, tr, true)
	if c.onTerminal != nil {
		c.onTerminal(batchID)
	}
	close(finished)
}

// Stop requests a soft shutdown: workers finish their in-flight attempt
// and stop dequeuing; not-yet-submitted jobs are abandoned in status
// pending. Stop is idempotent and returns immediately.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	stopCh := c.stopCh
	c.mu.Unlock()
	if stopCh == nil {
		return
	}
	c.stopOnce.Do(func() {
		c.logger.Info("Stopping batch generation", slog.String("batch_id", c.ID()))
		close(stopCh)
	})
}

// ID returns the batch id, empty before Start.
func (c *Coordinator) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// State reports the batch lifecycle state.
func (c *Coordinator) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsRunning reports whether the batch is still executing.
func (c *Coordinator) IsRunning() bool {
	return c.State() == domain.BatchStateRunning
}

// Progress returns the current snapshot with derived fields.
func (c *Coordinator) Progress() domain.Progress {
	c.mu.Lock()
	t := c.tracker
	c.mu.Unlock()
	if t == nil {
		return domain.Progress{}
	}
	return t.Snapshot()
}

// Outcomes returns every attempt outcome recorded so far.
func (c *Coordinator) Outcomes() []*domain.Outcome {
	c.mu.Lock()
	t := c.tracker
	c.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Outcomes()
}

// Done is closed once the batch has fully terminated, workers included.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.finished
}

func (c *Coordinator) publishProgress(batchID string, t *tracker, final bool) {
	if c.notifier == nil {
		return
	}
	c.notifier.Publish(ProgressEvent{
		BatchID:  batchID,
		Progress: t.Snapshot(),
		Final:    final,
		Time:     time.Now(),
	})
}
