package services

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-system/internal/status"
	"queue-system/models"
)

func newResourceRecord(t *testing.T, resStatus string, capacity int) *core.Record {
	t.Helper()
	collection := core.NewBaseCollection("resources")
	collection.Fields.Add(
		&core.TextField{Name: "status", Max: 16},
		&core.NumberField{Name: "capacity", OnlyInt: true},
		&core.TextField{Name: "assigned_to", Max: 64},
	)
	record := core.NewRecord(collection)
	record.Set("id", "res_1")
	record.Set("status", resStatus)
	record.Set("capacity", capacity)
	return record
}

func newParticipantRecord(t *testing.T) *core.Record {
	t.Helper()
	collection := core.NewBaseCollection("participants")
	collection.Fields.Add(
		&core.TextField{Name: "resource", Max: 64},
		&core.NumberField{Name: "position", OnlyInt: true},
	)
	record := core.NewRecord(collection)
	record.Set("id", "part_1")
	return record
}

func TestClaimRecord_LinksBothSides(t *testing.T) {
	resource := newResourceRecord(t, string(models.ResourceAvailable), 4)
	participant := newParticipantRecord(t)

	require.NoError(t, claimRecord(resource, participant, 3))

	assert.Equal(t, string(models.ResourceBusy), resource.GetString("status"))
	assert.Equal(t, participant.Id, resource.GetString("assigned_to"))
	assert.Equal(t, resource.Id, participant.GetString("resource"))
}

func TestClaimRecord_BusyResourceRejected(t *testing.T) {
	resource := newResourceRecord(t, string(models.ResourceBusy), 4)
	participant := newParticipantRecord(t)

	err := claimRecord(resource, participant, 1)

	assert.ErrorIs(t, err, status.ErrInvalidState)
	assert.Empty(t, participant.GetString("resource"))
}

func TestClaimRecord_CapacityBlockLeavesRecordsUntouched(t *testing.T) {
	resource := newResourceRecord(t, string(models.ResourceAvailable), 2)
	participant := newParticipantRecord(t)

	err := claimRecord(resource, participant, 5)

	assert.ErrorIs(t, err, status.ErrCapacityExceeded)
	// A rejected claim must not half-apply: the resource stays free and
	// the participant holds no assignment.
	assert.Equal(t, string(models.ResourceAvailable), resource.GetString("status"))
	assert.Empty(t, resource.GetString("assigned_to"))
	assert.Empty(t, participant.GetString("resource"))
}

func TestReleaseRecord_Idempotent(t *testing.T) {
	resource := newResourceRecord(t, string(models.ResourceBusy), 4)
	resource.Set("assigned_to", "p1")

	assert.True(t, releaseRecord(resource))
	assert.Equal(t, string(models.ResourceAvailable), resource.GetString("status"))
	assert.Empty(t, resource.GetString("assigned_to"))

	// Releasing again reports nothing to persist and changes nothing.
	assert.False(t, releaseRecord(resource))
	assert.Equal(t, string(models.ResourceAvailable), resource.GetString("status"))
	assert.Empty(t, resource.GetString("assigned_to"))
}
