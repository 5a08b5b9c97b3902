package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	joinAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_join_attempts_total",
			Help: "Join attempts per queue and outcome",
		},
		[]string{"queue", "outcome"},
	)

	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "participant_transitions_total",
			Help: "Participant lifecycle transitions per operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	serveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "service_duration_minutes",
			Help:    "Minutes from service start to completion",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"queue"},
	)

	liveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_subscribers_total",
			Help: "Currently attached live viewers",
		},
	)

	unreadNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unread_notifications_total",
			Help: "Unread notification counters currently held in Redis",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of goroutines",
		},
	)
)

// TrackJoin counts one join attempt. Outcome is one of success, closed,
// full, insufficient_time, invalid, duplicate, not_found.
func TrackJoin(queueCode, outcome string) {
	joinAttempts.WithLabelValues(queueCode, outcome).Inc()
}

// TrackTransition counts one lifecycle operation attempt.
func TrackTransition(operation, outcome string) {
	transitions.WithLabelValues(operation, outcome).Inc()
}

// ObserveServeDuration records how long one service took.
func ObserveServeDuration(queueCode string, minutes float64) {
	serveDuration.WithLabelValues(queueCode).Observe(minutes)
}

// TrackLiveSubscription moves the viewer gauge by delta (+1 attach, -1 detach).
func TrackLiveSubscription(delta int) {
	liveSubscribers.Add(float64(delta))
}

// Monitor periodically samples gauges that need polling rather than
// event-driven updates.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}
	go monitor.collect()
	return monitor
}

func (m *Monitor) collect() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		goroutineCount.Set(float64(runtime.NumGoroutine()))
		m.collectUnread(context.Background())
	}
}

func (m *Monitor) collectUnread(ctx context.Context) {
	if m.redis == nil {
		return
	}
	var total int64
	iter := m.redis.Scan(ctx, 0, "notify:unread:*", 100).Iterator()
	for iter.Next(ctx) {
		count, err := m.redis.Get(ctx, iter.Val()).Int64()
		if err != nil {
			continue
		}
		total += count
	}
	if iter.Err() != nil {
		return
	}
	unreadNotifications.Set(float64(total))
}
