package generation

import (
	"log/slog"
	"sync"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// Registry is the process-wide index of active batches. An entry is
// created on batch start and removed on terminal completion or stop, so
// only live batches are externally queryable.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	batches map[string]*Coordinator
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		batches: make(map[string]*Coordinator),
	}
}

// Add registers a running batch.
func (r *Registry) Add(batchID string, c *Coordinator) {
	r.mu.Lock()
	r.batches[batchID] = c
	r.mu.Unlock()
	r.logger.Debug("Batch registered", slog.String("batch_id", batchID))
}

// Get returns the coordinator for a live batch.
func (r *Registry) Get(batchID string) (*Coordinator, error) {
	r.mu.Lock()
	c, ok := r.batches[batchID]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return c, nil
}

// Remove drops a batch from queryable state. Removing an unknown id is a no-op.
func (r *Registry) Remove(batchID string) {
	r.mu.Lock()
	_, ok := r.batches[batchID]
	delete(r.batches, batchID)
	r.mu.Unlock()
	if ok {
		r.logger.Debug("Batch removed", slog.String("batch_id", batchID))
	}
}

// Stop removes the batch and requests its soft shutdown. It is
// idempotent: a second call for the same id reports stopped=false and has
// no further effect.
func (r *Registry) Stop(batchID string) bool {
	r.mu.Lock()
	c, ok := r.batches[batchID]
	delete(r.batches, batchID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.Stop()
	r.logger.Info("Batch stopped", slog.String("batch_id", batchID))
	return true
}

// Len reports the number of live batches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}
