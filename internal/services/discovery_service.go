package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"queue-system/internal/status"
	"queue-system/internal/store"
	"queue-system/models"
)

// DiscoveryService answers "which queue should I join": geographic lookup
// and load-based featured ranking. Pure reads; the computed distance lives
// only on the returned DTOs.
type DiscoveryService struct {
	App core.App
}

func NewDiscoveryService(app core.App) *DiscoveryService {
	return &DiscoveryService{App: app}
}

// Nearby returns every queue within radiusKM of the point, closest first.
// The radius boundary is inclusive.
func (s *DiscoveryService) Nearby(ctx context.Context, lat, lon, radiusKM float64) ([]models.Queue, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", status.ErrValidation)
	}
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", status.ErrValidation)
	}

	records, err := store.AllQueues(s.App)
	if err != nil {
		return nil, err
	}

	queues := make([]models.Queue, 0, len(records))
	for _, record := range records {
		queues = append(queues, store.QueueFromRecord(record))
	}
	return filterNearby(queues, lat, lon, radiusKM), nil
}

// filterNearby keeps the queues within radiusKM of the point, boundary
// inclusive, stamps their distance and sorts them closest first.
func filterNearby(queues []models.Queue, lat, lon, radiusKM float64) []models.Queue {
	nearby := make([]models.Queue, 0)
	for _, queue := range queues {
		distance := Haversine(lat, lon, queue.Latitude, queue.Longitude)
		if distance <= radiusKM {
			queue.DistanceKM = distance
			nearby = append(nearby, queue)
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKM < nearby[j].DistanceKM })
	return nearby
}

const featuredLimit = 10

// TopFeatured ranks queues by load: (waiting / total resource capacity) *
// 100, descending. Queues with nobody waiting or no capacity are skipped.
func (s *DiscoveryService) TopFeatured(ctx context.Context, categoryFilter string) ([]models.FeaturedQueue, error) {
	records, err := store.AllQueues(s.App)
	if err != nil {
		return nil, err
	}

	featured := make([]models.FeaturedQueue, 0)
	for _, record := range records {
		queue := store.QueueFromRecord(record)
		if categoryFilter != "" && string(queue.Category) != categoryFilter {
			continue
		}

		waiting, err := store.WaitingCount(s.App, queue.ID)
		if err != nil {
			return nil, err
		}
		if waiting == 0 {
			continue
		}

		capacity, err := s.totalResourceCapacity(queue.ID)
		if err != nil {
			return nil, err
		}
		if capacity == 0 {
			continue
		}

		load, _ := decimal.NewFromInt(int64(waiting)).
			Div(decimal.NewFromInt(int64(capacity))).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			Float64()

		featured = append(featured, models.FeaturedQueue{
			Queue:        queue,
			WaitingCount: waiting,
			Capacity:     capacity,
			LoadPercent:  load,
		})
	}

	sort.SliceStable(featured, func(i, j int) bool { return featured[i].LoadPercent > featured[j].LoadPercent })
	if len(featured) > featuredLimit {
		featured = featured[:featuredLimit]
	}
	return featured, nil
}

func (s *DiscoveryService) totalResourceCapacity(queueID string) (int, error) {
	records, err := store.QueueResources(s.App, queueID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range records {
		total += r.GetInt("capacity")
	}
	return total, nil
}
