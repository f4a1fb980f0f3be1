package generation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversToAllSubscribers(t *testing.T) {
	n := NewNotifier(8, nil)

	var mu sync.Mutex
	var got1, got2 []string

	n.Subscribe(func(ev ProgressEvent) error {
		mu.Lock()
		got1 = append(got1, ev.BatchID)
		mu.Unlock()
		return nil
	})
	n.Subscribe(func(ev ProgressEvent) error {
		mu.Lock()
		got2 = append(got2, ev.BatchID)
		mu.Unlock()
		return nil
	})

	n.Publish(ProgressEvent{BatchID: "batch_a", Time: time.Now()})
	n.Publish(ProgressEvent{BatchID: "batch_b", Final: true, Time: time.Now()})
	n.Close()

	assert.Equal(t, []string{"batch_a", "batch_b"}, got1)
	assert.Equal(t, []string{"batch_a", "batch_b"}, got2)
	assert.Zero(t, n.Dropped())
}

func TestNotifier_DropsWhenBufferFull(t *testing.T) {
	n := NewNotifier(1, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var delivered int
	var mu sync.Mutex

	n.Subscribe(func(ev ProgressEvent) error {
		mu.Lock()
		delivered++
		first := delivered == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return nil
	})

	// First event occupies the consumer, second fills the buffer, third
	// finds it full and is dropped.
	n.Publish(ProgressEvent{BatchID: "ev_1"})
	<-started
	n.Publish(ProgressEvent{BatchID: "ev_2"})
	n.Publish(ProgressEvent{BatchID: "ev_3"})

	assert.Equal(t, uint64(1), n.Dropped())

	close(release)
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, delivered)
}

func TestNotifier_SubscriberFailureIsIsolated(t *testing.T) {
	n := NewNotifier(8, nil)

	var mu sync.Mutex
	var healthy int

	n.Subscribe(func(ev ProgressEvent) error {
		panic("subscriber bug")
	})
	n.Subscribe(func(ev ProgressEvent) error {
		return errors.New("downstream unavailable")
	})
	n.Subscribe(func(ev ProgressEvent) error {
		mu.Lock()
		healthy++
		mu.Unlock()
		return nil
	})

	n.Publish(ProgressEvent{BatchID: "batch_a"})
	n.Publish(ProgressEvent{BatchID: "batch_a", Final: true})
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, healthy, "healthy subscriber must see every event")
}

func TestNotifier_PublishAfterCloseIsDropped(t *testing.T) {
	n := NewNotifier(8, nil)
	n.Close()

	assert.NotPanics(t, func() {
		n.Publish(ProgressEvent{BatchID: "batch_late"})
	})
	assert.Equal(t, uint64(1), n.Dropped())
}

func TestNotifier_CloseDrainsBufferedEvents(t *testing.T) {
	n := NewNotifier(16, nil)

	var mu sync.Mutex
	var seen int
	n.Subscribe(func(ev ProgressEvent) error {
		mu.Lock()
		seen++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 10; i++ {
		n.Publish(ProgressEvent{BatchID: "batch_a"})
	}
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, seen)
}
