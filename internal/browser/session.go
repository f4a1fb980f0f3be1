package browser

import (
	"context"
	"time"
)

// Handle is an opaque reference to one live browser owned by the
// launching collaborator (a remote debugging endpoint, a driver
// connection, ...). This package never inspects it.
type Handle any

// Launcher starts and stops Chrome for a named profile. The actual
// automation stack (undetected driver, fingerprint patching) lives
// behind this interface.
type Launcher interface {
	Start(ctx context.Context, profileName string) (Handle, error)
	Stop(ctx context.Context, handle Handle) error
}

// Session is one live browser bound to a Chrome profile. It implements
// generation's Resource contract: held exclusively by one worker at a time.
type Session struct {
	Profile   string    `json:"profile_name"`
	StartedAt time.Time `json:"started_at"`

	handle Handle
}

// ProfileName returns the Chrome profile the session is bound to.
func (s *Session) ProfileName() string {
	return s.Profile
}

// Handle exposes the launcher-owned browser reference for executors.
func (s *Session) BrowserHandle() Handle {
	return s.handle
}
