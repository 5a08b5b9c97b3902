package services

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"queue-system/utils"
)

// Notifier is the outbound push edge: PubNub publishes guarded by a circuit
// breaker, plus per-participant unread counters in Redis so a reconnecting
// viewer can tell how much it missed.
type Notifier struct {
	pn      *pubnub.PubNub
	redis   *redis.Client
	breaker *utils.CircuitBreaker
}

func NewNotifier(pn *pubnub.PubNub, redisClient *redis.Client) *Notifier {
	return &Notifier{
		pn:      pn,
		redis:   redisClient,
		breaker: utils.NewCircuitBreaker("pubnub-publish"),
	}
}

// Publish pushes a message to a PubNub channel through the breaker.
// Publishing is best-effort: failures are logged, never raised to callers.
func (n *Notifier) Publish(channel string, message map[string]any) {
	if n.pn == nil {
		return
	}
	err := n.breaker.Do(func() error {
		_, _, err := n.pn.Publish().
			Channel(channel).
			Message(message).
			Execute()
		return err
	})
	if err != nil {
		slog.Warn("pubnub publish failed", "channel", channel, "error", err)
	}
}

// NotifyParticipant pushes an event to the participant's personal channel
// and bumps their unread counter.
func (n *Notifier) NotifyParticipant(ctx context.Context, code, event string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["type"] = event

	if n.redis != nil {
		if err := n.redis.Incr(ctx, unreadKey(code)).Err(); err != nil {
			slog.Warn("unread counter incr failed", "participant", code, "error", err)
		}
	}

	n.Publish(ParticipantChannel(code), payload)
}

// UnreadCount reads the participant's unread notification counter.
func (n *Notifier) UnreadCount(ctx context.Context, code string) int {
	if n.redis == nil {
		return 0
	}
	count, err := n.redis.Get(ctx, unreadKey(code)).Int()
	if err != nil {
		return 0
	}
	return count
}

// ClearUnread resets the counter, called when a viewer catches up.
func (n *Notifier) ClearUnread(ctx context.Context, code string) {
	if n.redis == nil {
		return
	}
	n.redis.Del(ctx, unreadKey(code))
}

// ParticipantChannel names the PubNub channel for one participant.
func ParticipantChannel(code string) string {
	return fmt.Sprintf("participant-%s", code)
}

// QueueChannel names the PubNub channel for a queue's public board.
func QueueChannel(code string) string {
	return fmt.Sprintf("queue-%s", code)
}

func unreadKey(code string) string {
	return fmt.Sprintf("notify:unread:%s", code)
}
