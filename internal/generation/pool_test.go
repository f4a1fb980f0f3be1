package generation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

type fakeSession string

func (s fakeSession) ProfileName() string { return string(s) }

func newTestPool(profiles ...string) *Pool {
	sessions := make([]domain.Resource, 0, len(profiles))
	for _, p := range profiles {
		sessions = append(sessions, fakeSession(p))
	}
	return NewPool(sessions, nil)
}

func TestPool_AcquireRelease(t *testing.T) {
	pool := newTestPool("profile_1", "profile_2")
	assert.Equal(t, 2, pool.Size())

	res1, err := pool.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, res1)

	res2, err := pool.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, res2)

	assert.NotEqual(t, res1.ProfileName(), res2.ProfileName())

	pool.Release(res1)

	res3, err := pool.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, res1.ProfileName(), res3.ProfileName())
}

func TestPool_AcquireTimeout(t *testing.T) {
	pool := newTestPool("profile_1")

	res, err := pool.Acquire(context.Background(), time.Second)
	require.NoError(t, err)

	// Pool is now empty; a second acquire must expire.
	_, err = pool.Acquire(context.Background(), 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResourceUnavailable)

	pool.Release(res)
}

func TestPool_AcquireContextCanceled(t *testing.T) {
	pool := newTestPool("profile_1")

	res, err := pool.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	defer pool.Release(res)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pool.Acquire(ctx, time.Second)
	assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
}

func TestPool_ReleaseIntoFullPool(t *testing.T) {
	pool := newTestPool("profile_1")

	// The pool never issued this session; Release must not block.
	done := make(chan struct{})
	go func() {
		pool.Release(fakeSession("stray"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Release blocked on a full pool")
	}
}

func TestPool_ReleaseNil(t *testing.T) {
	pool := newTestPool("profile_1")
	assert.NotPanics(t, func() { pool.Release(nil) })
}

func TestPool_ExclusiveHandout(t *testing.T) {
	pool := newTestPool("profile_1", "profile_2")

	var mu sync.Mutex
	held := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pool.Acquire(context.Background(), 2*time.Second)
			if err != nil {
				t.Error(err)
				return
			}

			mu.Lock()
			if held[res.ProfileName()] {
				t.Errorf("session %s handed to two holders at once", res.ProfileName())
			}
			held[res.ProfileName()] = true
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			held[res.ProfileName()] = false
			mu.Unlock()

			pool.Release(res)
		}()
	}
	wg.Wait()
}
