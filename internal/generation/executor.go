package generation

import (
	"context"
	"sync"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// Executor performs a job's actual automation work against a held browser
// session and returns the attempt's outcome within the caller's deadline.
// The automation scripts themselves live outside this package.
type Executor interface {
	Generate(ctx context.Context, job *domain.Job, res domain.Resource) (*domain.Outcome, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job *domain.Job, res domain.Resource) (*domain.Outcome, error)

func (f ExecutorFunc) Generate(ctx context.Context, job *domain.Job, res domain.Resource) (*domain.Outcome, error) {
	return f(ctx, job, res)
}

// ExecutorRegistry resolves platform names ("stable_diffusion", "leonardo",
// ...) to executors registered by the embedding application.
type ExecutorRegistry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewExecutorRegistry creates an empty registry.
func NewExecutorRegistry() *ExecutorRegistry {
	return &ExecutorRegistry{executors: make(map[string]Executor)}
}

// Register binds an executor to a platform name, replacing any previous binding.
func (r *ExecutorRegistry) Register(platform string, ex Executor) {
	r.mu.Lock()
	r.executors[platform] = ex
	r.mu.Unlock()
}

// Resolve returns the executor for a platform name.
func (r *ExecutorRegistry) Resolve(platform string) (Executor, error) {
	r.mu.RLock()
	ex, ok := r.executors[platform]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUnknownPlatform
	}
	return ex, nil
}

// Platforms lists the registered platform names.
func (r *ExecutorRegistry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	return names
}
