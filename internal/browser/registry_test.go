package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	startErr error
	stopErr  error
	started  []string
	stopped  []Handle
}

func (l *fakeLauncher) Start(_ context.Context, profileName string) (Handle, error) {
	if l.startErr != nil {
		return nil, l.startErr
	}
	l.started = append(l.started, profileName)
	return "handle:" + profileName, nil
}

func (l *fakeLauncher) Stop(_ context.Context, handle Handle) error {
	if l.stopErr != nil {
		return l.stopErr
	}
	l.stopped = append(l.stopped, handle)
	return nil
}

func TestRegistry_StartStop(t *testing.T) {
	launcher := &fakeLauncher{}
	reg := NewRegistry(launcher, nil)

	session, err := reg.Start(context.Background(), "profile_1")
	require.NoError(t, err)
	assert.Equal(t, "profile_1", session.ProfileName())
	assert.Equal(t, Handle("handle:profile_1"), session.BrowserHandle())
	assert.False(t, session.StartedAt.IsZero())

	got, err := reg.Get("profile_1")
	require.NoError(t, err)
	assert.Same(t, session, got)

	err = reg.Stop(context.Background(), "profile_1")
	require.NoError(t, err)
	assert.Equal(t, []Handle{Handle("handle:profile_1")}, launcher.stopped)

	_, err = reg.Get("profile_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_StartDuplicate(t *testing.T) {
	reg := NewRegistry(&fakeLauncher{}, nil)

	_, err := reg.Start(context.Background(), "profile_1")
	require.NoError(t, err)

	_, err = reg.Start(context.Background(), "profile_1")
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestRegistry_StartLauncherFailure(t *testing.T) {
	launcher := &fakeLauncher{startErr: errors.New("chrome crashed")}
	reg := NewRegistry(launcher, nil)

	_, err := reg.Start(context.Background(), "profile_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome crashed")

	// A failed launch must not leave a registered session behind.
	_, err = reg.Get("profile_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_StopUnknownProfile(t *testing.T) {
	reg := NewRegistry(&fakeLauncher{}, nil)
	err := reg.Stop(context.Background(), "profile_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry(&fakeLauncher{}, nil)

	assert.Empty(t, reg.List())

	_, err := reg.Start(context.Background(), "profile_1")
	require.NoError(t, err)
	_, err = reg.Start(context.Background(), "profile_2")
	require.NoError(t, err)

	sessions := reg.List()
	require.Len(t, sessions, 2)

	names := []string{sessions[0].ProfileName(), sessions[1].ProfileName()}
	assert.ElementsMatch(t, []string{"profile_1", "profile_2"}, names)
}

func TestRegistry_Checkout(t *testing.T) {
	reg := NewRegistry(&fakeLauncher{}, nil)

	_, err := reg.Start(context.Background(), "profile_1")
	require.NoError(t, err)
	_, err = reg.Start(context.Background(), "profile_2")
	require.NoError(t, err)

	t.Run("all profiles live", func(t *testing.T) {
		resources, err := reg.Checkout([]string{"profile_1", "profile_2"})
		require.NoError(t, err)
		require.Len(t, resources, 2)
		assert.Equal(t, "profile_1", resources[0].ProfileName())
		assert.Equal(t, "profile_2", resources[1].ProfileName())
	})

	t.Run("repeated name is checked out once", func(t *testing.T) {
		resources, err := reg.Checkout([]string{"profile_1", "profile_1", "profile_2"})
		require.NoError(t, err)
		require.Len(t, resources, 2)
		assert.Equal(t, "profile_1", resources[0].ProfileName())
		assert.Equal(t, "profile_2", resources[1].ProfileName())
	})

	t.Run("unknown profile fails the whole checkout", func(t *testing.T) {
		_, err := reg.Checkout([]string{"profile_1", "profile_9"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Contains(t, err.Error(), "profile_9")
	})
}

func TestDetachedLauncher(t *testing.T) {
	l := DetachedLauncher{}

	handle, err := l.Start(context.Background(), "profile_1")
	require.NoError(t, err)
	assert.Equal(t, Handle("profile_1"), handle)

	assert.NoError(t, l.Stop(context.Background(), handle))
}
