package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"queue-system/config"
	"queue-system/internal/store"
	"queue-system/models"
	"queue-system/monitoring"
)

// liveViewer is one attached subscriber. Snapshots that cannot be buffered
// are dropped; a slow viewer never stalls the producer or its peers.
type liveViewer struct {
	sink chan []byte
}

// liveTopic is one polled subject (a queue board or a single participant)
// with its attached viewers. The producer goroutine lives as long as at
// least one viewer does.
type liveTopic struct {
	key     string
	viewers map[*liveViewer]struct{}
	cancel  context.CancelFunc
	last    []byte // last emitted snapshot, timestamp zeroed, for diff gating
	stamped []byte // last emitted frame as sent, replayed to late subscribers
}

// LiveService polls queue and participant state on an interval and fans the
// resulting snapshots out to attached viewers, emitting only when the
// snapshot actually changed. Changed snapshots are mirrored to PubNub so
// mobile clients off the SSE path see the same stream.
type LiveService struct {
	App      core.App
	Config   *config.Config
	Notifier *Notifier

	mu     sync.Mutex
	topics map[string]*liveTopic
	wg     sync.WaitGroup
	closed bool
}

func NewLiveService(app core.App, cfg *config.Config, notifier *Notifier) *LiveService {
	return &LiveService{
		App:      app,
		Config:   cfg,
		Notifier: notifier,
		topics:   make(map[string]*liveTopic),
	}
}

// SubscribeQueue attaches a viewer to a queue's live board. The returned
// channel is closed on Unsubscribe or Shutdown.
func (s *LiveService) SubscribeQueue(queueCode string) (<-chan []byte, func()) {
	return s.subscribe("queue:"+queueCode, func(app core.App) (any, error) {
		return s.queueSnapshot(app, queueCode)
	})
}

// SubscribeParticipant attaches a viewer to one participant's live view.
func (s *LiveService) SubscribeParticipant(participantCode string) (<-chan []byte, func()) {
	return s.subscribe("participant:"+participantCode, func(app core.App) (any, error) {
		return s.participantSnapshot(app, participantCode)
	})
}

type snapshotFn func(app core.App) (any, error)

func (s *LiveService) subscribe(key string, build snapshotFn) (<-chan []byte, func()) {
	viewer := &liveViewer{sink: make(chan []byte, s.Config.LiveSendBuffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(viewer.sink)
		return viewer.sink, func() {}
	}
	topic, ok := s.topics[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		topic = &liveTopic{
			key:     key,
			viewers: make(map[*liveViewer]struct{}),
			cancel:  cancel,
		}
		s.topics[key] = topic
		s.wg.Add(1)
		go s.run(ctx, topic, build)
	}
	topic.viewers[viewer] = struct{}{}
	if topic.stamped != nil {
		// Late subscribers start from the current state instead of
		// waiting for the next change.
		select {
		case viewer.sink <- topic.stamped:
		default:
		}
	}
	s.mu.Unlock()

	monitoring.TrackLiveSubscription(1)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { s.detach(key, viewer) })
	}
	return viewer.sink, unsubscribe
}

func (s *LiveService) detach(key string, viewer *liveViewer) {
	s.mu.Lock()
	topic, ok := s.topics[key]
	if ok {
		if _, attached := topic.viewers[viewer]; attached {
			delete(topic.viewers, viewer)
			close(viewer.sink)
		}
		if len(topic.viewers) == 0 {
			topic.cancel()
			delete(s.topics, key)
		}
	}
	s.mu.Unlock()

	monitoring.TrackLiveSubscription(-1)
}

// run is the per-topic producer loop: poll, diff, fan out.
func (s *LiveService) run(ctx context.Context, topic *liveTopic, build snapshotFn) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Config.LivePollInterval)
	defer ticker.Stop()

	s.poll(topic, build)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(topic, build)
		}
	}
}

func (s *LiveService) poll(topic *liveTopic, build snapshotFn) {
	snapshot, err := build(s.App)
	if err != nil {
		slog.Warn("live snapshot build failed", "topic", topic.key, "error", err)
		return
	}

	// Snapshots are marshaled with a zero timestamp first so the diff
	// compares content, not clock ticks.
	bare, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("live snapshot marshal failed", "topic", topic.key, "error", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if string(bare) == string(topic.last) {
		s.mu.Unlock()
		return
	}
	topic.last = bare

	stamped := stampSnapshot(snapshot, time.Now().UTC())
	topic.stamped = stamped
	for viewer := range topic.viewers {
		select {
		case viewer.sink <- stamped:
		default: // viewer buffer full, drop this frame for them
		}
	}
	s.mu.Unlock()

	if s.Notifier != nil {
		s.mirror(topic.key, snapshot)
	}
}

// mirror republishes a changed snapshot on the matching PubNub channel.
func (s *LiveService) mirror(key string, snapshot any) {
	switch v := snapshot.(type) {
	case *models.QueueSnapshot:
		s.Notifier.Publish(QueueChannel(v.QueueCode), map[string]any{
			"type":     "board_update",
			"snapshot": v,
		})
	case *models.ParticipantSnapshot:
		s.Notifier.Publish(ParticipantChannel(v.Code), map[string]any{
			"type":     "status_update",
			"snapshot": v,
		})
	default:
		slog.Warn("live mirror: unknown snapshot type", "topic", key)
	}
}

func stampSnapshot(snapshot any, at time.Time) []byte {
	switch v := snapshot.(type) {
	case *models.QueueSnapshot:
		v.GeneratedAt = at
	case *models.ParticipantSnapshot:
		v.GeneratedAt = at
	}
	data, _ := json.Marshal(snapshot)
	return data
}

// queueSnapshot builds the public board: waiting list in position order,
// who is being served, and who is next.
func (s *LiveService) queueSnapshot(app core.App, queueCode string) (*models.QueueSnapshot, error) {
	queueRecord, err := store.QueueByCode(app, queueCode)
	if err != nil {
		return nil, err
	}
	queue := store.QueueFromRecord(queueRecord)

	waiting, err := store.WaitingOrdered(app, queueRecord.Id)
	if err != nil {
		return nil, err
	}
	serving, err := store.ServingParticipants(app, queueRecord.Id)
	if err != nil {
		return nil, err
	}

	snapshot := &models.QueueSnapshot{
		QueueCode:    queueCode,
		Waiting:      make([]models.BoardEntry, 0, len(waiting)),
		NowServing:   make([]string, 0, len(serving)),
		WaitingCount: len(waiting),
	}
	for _, r := range waiting {
		p := store.ParticipantFromRecord(r)
		snapshot.Waiting = append(snapshot.Waiting, models.BoardEntry{
			Code:     p.Code,
			Number:   p.Number,
			Name:     p.Name,
			Position: p.Position,
			ETA:      EstimateWait(queue, p.Position),
		})
	}
	for _, r := range serving {
		snapshot.NowServing = append(snapshot.NowServing, r.GetString("number"))
	}
	if len(snapshot.Waiting) > 0 {
		snapshot.NextInLine = snapshot.Waiting[0].Number
	}
	return snapshot, nil
}

// participantSnapshot builds the single-participant view, including the
// unread notification count kept by the notifier.
func (s *LiveService) participantSnapshot(app core.App, participantCode string) (*models.ParticipantSnapshot, error) {
	record, err := store.ParticipantByCode(app, participantCode)
	if err != nil {
		return nil, err
	}
	p := store.ParticipantFromRecord(record)

	snapshot := &models.ParticipantSnapshot{
		Code:     p.Code,
		Number:   p.Number,
		State:    p.State,
		Position: p.Position,
	}
	if p.State == models.StateWaiting {
		queueRecord, err := store.QueueByID(app, p.QueueID)
		if err != nil {
			return nil, err
		}
		snapshot.ETA = EstimateWait(store.QueueFromRecord(queueRecord), p.Position)
	}
	if s.Notifier != nil {
		snapshot.UnreadNotifications = s.Notifier.UnreadCount(context.Background(), p.Code)
	}
	return snapshot, nil
}

// Shutdown cancels all producers and waits for them to drain, bounded by
// the same 30s grace the HTTP server gets.
func (s *LiveService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for key, topic := range s.topics {
		topic.cancel()
		for viewer := range topic.viewers {
			close(viewer.sink)
		}
		// An in-flight poll re-checks closed under mu before sending,
		// and an empty viewer set keeps any straggler from a closed sink.
		topic.viewers = make(map[*liveViewer]struct{})
		delete(s.topics, key)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(30 * time.Second):
		return fmt.Errorf("live service shutdown timed out")
	}
}
