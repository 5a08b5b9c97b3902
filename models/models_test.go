package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantStateTerminal(t *testing.T) {
	assert.False(t, StateWaiting.Terminal())
	assert.False(t, StateServing.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.True(t, StateNoShow.Terminal())
}

func TestQueueCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, QueueCategory("karaoke").Valid())
	assert.False(t, QueueCategory("").Valid())
}

func TestKindForCategory(t *testing.T) {
	kind, ok := KindForCategory(CategoryRestaurant)
	assert.True(t, ok)
	assert.Equal(t, ResourceTable, kind)

	kind, ok = KindForCategory(CategoryHospital)
	assert.True(t, ok)
	assert.Equal(t, ResourceDoctor, kind)

	kind, ok = KindForCategory(CategoryBank)
	assert.True(t, ok)
	assert.Equal(t, ResourceCounter, kind)

	// General queues have no resource step.
	_, ok = KindForCategory(CategoryGeneral)
	assert.False(t, ok)
}
