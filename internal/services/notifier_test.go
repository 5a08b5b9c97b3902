package services

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestNotifyParticipant_BumpsUnreadCounter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	notifier := NewNotifier(nil, db)

	mock.ExpectIncr("notify:unread:PARTCODE1").SetVal(1)

	notifier.NotifyParticipant(context.Background(), "PARTCODE1", "called", map[string]any{
		"queue": "Q1",
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCount(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	notifier := NewNotifier(nil, db)

	mock.ExpectGet("notify:unread:PARTCODE1").SetVal("3")
	assert.Equal(t, 3, notifier.UnreadCount(context.Background(), "PARTCODE1"))

	// Missing key reads as zero.
	mock.ExpectGet("notify:unread:NOBODY").RedisNil()
	assert.Equal(t, 0, notifier.UnreadCount(context.Background(), "NOBODY"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearUnread(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	notifier := NewNotifier(nil, db)

	mock.ExpectDel("notify:unread:PARTCODE1").SetVal(1)
	notifier.ClearUnread(context.Background(), "PARTCODE1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "participant-ABC123", ParticipantChannel("ABC123"))
	assert.Equal(t, "queue-XYZ789", QueueChannel("XYZ789"))
}

func TestNotifierWithoutRedis(t *testing.T) {
	notifier := NewNotifier(nil, nil)

	// Nothing to assert beyond not panicking.
	notifier.NotifyParticipant(context.Background(), "PARTCODE1", "called", nil)
	notifier.ClearUnread(context.Background(), "PARTCODE1")
	assert.Equal(t, 0, notifier.UnreadCount(context.Background(), "PARTCODE1"))
}
