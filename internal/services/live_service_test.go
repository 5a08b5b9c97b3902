package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-system/config"
	"queue-system/models"
)

func newTestLiveService() *LiveService {
	cfg := &config.Config{
		LivePollInterval: 20 * time.Millisecond,
		LiveSendBuffer:   10,
	}
	return NewLiveService(nil, cfg, nil)
}

func TestLiveService_EmitsOnlyOnChange(t *testing.T) {
	s := newTestLiveService()
	defer s.Shutdown()

	var waitingCount atomic.Int64
	waitingCount.Store(2)

	sink, unsubscribe := s.subscribe("queue:TEST", func(app core.App) (any, error) {
		return &models.QueueSnapshot{
			QueueCode:    "TEST",
			WaitingCount: int(waitingCount.Load()),
		}, nil
	})
	defer unsubscribe()

	// First poll always emits.
	select {
	case frame := <-sink:
		assert.Contains(t, string(frame), `"waiting_count":2`)
		assert.Contains(t, string(frame), `"generated_at"`)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	// Unchanged state produces no further frames.
	select {
	case frame := <-sink:
		t.Fatalf("unexpected frame for unchanged snapshot: %s", frame)
	case <-time.After(100 * time.Millisecond):
	}

	// A state change comes through on the next poll.
	waitingCount.Store(3)
	select {
	case frame := <-sink:
		assert.Contains(t, string(frame), `"waiting_count":3`)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after state change")
	}
}

func TestLiveService_UnsubscribeClosesSink(t *testing.T) {
	s := newTestLiveService()
	defer s.Shutdown()

	sink, unsubscribe := s.subscribe("queue:TEST", func(app core.App) (any, error) {
		return &models.QueueSnapshot{QueueCode: "TEST"}, nil
	})

	unsubscribe()
	// Unsubscribing twice is a no-op.
	unsubscribe()

	timeout := time.After(time.Second)
	for {
		select {
		case _, open := <-sink:
			if !open {
				return
			}
		case <-timeout:
			t.Fatal("sink not closed after unsubscribe")
		}
	}
}

func TestLiveService_ViewersShareOneProducer(t *testing.T) {
	s := newTestLiveService()
	defer s.Shutdown()

	var builds atomic.Int64
	build := func(app core.App) (any, error) {
		builds.Add(1)
		return &models.QueueSnapshot{QueueCode: "TEST"}, nil
	}

	sinkA, unsubA := s.subscribe("queue:TEST", build)
	sinkB, unsubB := s.subscribe("queue:TEST", build)
	defer unsubA()
	defer unsubB()

	// Both viewers get the initial frame from the same producer.
	select {
	case <-sinkA:
	case <-time.After(time.Second):
		t.Fatal("viewer A got no snapshot")
	}
	select {
	case <-sinkB:
	case <-time.After(time.Second):
		t.Fatal("viewer B got no snapshot")
	}

	s.mu.Lock()
	topicCount := len(s.topics)
	s.mu.Unlock()
	assert.Equal(t, 1, topicCount)
}

func TestLiveService_LateSubscriberGetsCurrentState(t *testing.T) {
	s := newTestLiveService()
	defer s.Shutdown()

	build := func(app core.App) (any, error) {
		return &models.QueueSnapshot{QueueCode: "TEST", WaitingCount: 5}, nil
	}

	sinkA, unsubA := s.subscribe("queue:TEST", build)
	defer unsubA()
	select {
	case <-sinkA:
	case <-time.After(time.Second):
		t.Fatal("viewer A got no snapshot")
	}

	// Let the producer settle on the unchanged state, then attach.
	time.Sleep(60 * time.Millisecond)

	sinkB, unsubB := s.subscribe("queue:TEST", build)
	defer unsubB()
	select {
	case frame := <-sinkB:
		assert.Contains(t, string(frame), `"waiting_count":5`)
	case <-time.After(time.Second):
		t.Fatal("late viewer got no snapshot of the current state")
	}
}

func TestLiveService_ShutdownDuringPollDoesNotPanic(t *testing.T) {
	s := newTestLiveService()

	gate := make(chan struct{})
	var builds atomic.Int64
	sink, unsubscribe := s.subscribe("queue:TEST", func(app core.App) (any, error) {
		if builds.Add(1) > 1 {
			<-gate // hold the second poll mid-build
		}
		return &models.QueueSnapshot{
			QueueCode:    "TEST",
			WaitingCount: int(builds.Load()),
		}, nil
	})
	defer unsubscribe()

	select {
	case <-sink:
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	// Wait for the second poll to block inside build, shut down underneath
	// it, then release it. The freed poll must not send on the closed sink.
	for builds.Load() < 2 {
		time.Sleep(time.Millisecond)
	}
	done := make(chan error, 1)
	go func() { done <- s.Shutdown() }()
	time.Sleep(10 * time.Millisecond)
	close(gate)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	_, open := <-sink
	assert.False(t, open)
}

func TestLiveService_ShutdownClosesEverything(t *testing.T) {
	s := newTestLiveService()

	sink, unsubscribe := s.subscribe("queue:TEST", func(app core.App) (any, error) {
		return &models.QueueSnapshot{QueueCode: "TEST"}, nil
	})
	defer unsubscribe()

	require.NoError(t, s.Shutdown())

	timeout := time.After(time.Second)
	for {
		select {
		case _, open := <-sink:
			if !open {
				// Subscribing after shutdown yields an already-closed sink.
				closedSink, unsub := s.subscribe("queue:OTHER", func(app core.App) (any, error) {
					return &models.QueueSnapshot{QueueCode: "OTHER"}, nil
				})
				defer unsub()
				_, stillOpen := <-closedSink
				assert.False(t, stillOpen)
				return
			}
		case <-timeout:
			t.Fatal("sink not closed on shutdown")
		}
	}
}
