package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

var (
	// ErrSessionExists is returned when starting a session for a profile
	// that already has one.
	ErrSessionExists = errors.New("session already running for profile")

	// ErrSessionNotFound is returned when no session exists for a profile.
	ErrSessionNotFound = errors.New("session not found")
)

// Registry tracks the live browser sessions by profile name. Sessions are
// handed to the generation scheduler as pool resources via Checkout.
type Registry struct {
	launcher Launcher
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry backed by the given launcher.
func NewRegistry(launcher Launcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		launcher: launcher,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Start launches a browser for the profile and registers the session.
func (r *Registry) Start(ctx context.Context, profileName string) (*Session, error) {
	r.mu.Lock()
	if _, ok := r.sessions[profileName]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, profileName)
	}
	r.mu.Unlock()

	handle, err := r.launcher.Start(ctx, profileName)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser for profile %s: %w", profileName, err)
	}

	session := &Session{
		Profile:   profileName,
		StartedAt: time.Now(),
		handle:    handle,
	}

	r.mu.Lock()
	r.sessions[profileName] = session
	r.mu.Unlock()

	r.logger.Info("Browser session started",
		slog.String("profile", profileName),
	)
	return session, nil
}

// Stop shuts the profile's browser down and removes the session.
func (r *Registry) Stop(ctx context.Context, profileName string) error {
	r.mu.Lock()
	session, ok := r.sessions[profileName]
	delete(r.sessions, profileName)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, profileName)
	}

	if err := r.launcher.Stop(ctx, session.handle); err != nil {
		r.logger.Warn("Failed to stop browser cleanly",
			slog.String("profile", profileName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to stop browser for profile %s: %w", profileName, err)
	}

	r.logger.Info("Browser session stopped",
		slog.String("profile", profileName),
	)
	return nil
}

// Get returns the session for a profile.
func (r *Registry) Get(profileName string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[profileName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, profileName)
	}
	return session, nil
}

// List returns all live sessions.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Checkout resolves profile names to scheduler resources, failing if any
// named profile has no live session. A repeated name yields its session
// only once: each session is exclusively held by one worker at a time, so
// handing out two handles to the same browser would break that contract.
func (r *Registry) Checkout(profileNames []string) ([]domain.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(profileNames))
	resources := make([]domain.Resource, 0, len(profileNames))
	for _, name := range profileNames {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		session, ok := r.sessions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
		}
		resources = append(resources, session)
	}
	return resources, nil
}
