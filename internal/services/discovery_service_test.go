package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"queue-system/internal/status"
	"queue-system/models"
)

func TestNearby_RejectsBadCoordinates(t *testing.T) {
	s := NewDiscoveryService(nil)
	ctx := context.Background()

	_, err := s.Nearby(ctx, 91, 0, 5)
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = s.Nearby(ctx, 0, -181, 5)
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = s.Nearby(ctx, 0, 0, 0)
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = s.Nearby(ctx, 0, 0, -3)
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestFilterNearby_BoundaryInclusiveAndSorted(t *testing.T) {
	queues := []models.Queue{
		{Code: "FAR", Latitude: 2, Longitude: 0},
		{Code: "EDGE", Latitude: 1, Longitude: 0},
		{Code: "NEAR", Latitude: 0.1, Longitude: 0},
	}

	// Use the exact great-circle distance to the edge queue as the radius
	// so the boundary case is not an approximation.
	radius := Haversine(0, 0, 1, 0)

	nearby := filterNearby(queues, 0, 0, radius)

	assert.Len(t, nearby, 2)
	assert.Equal(t, "NEAR", nearby[0].Code)
	assert.Equal(t, "EDGE", nearby[1].Code)
	assert.InDelta(t, radius, nearby[1].DistanceKM, 1e-9)

	// Just inside the boundary drops the edge queue.
	assert.Len(t, filterNearby(queues, 0, 0, radius*0.999), 1)
}
