package models

import (
	"time"
)

type QueueCategory string

const (
	CategoryGeneral    QueueCategory = "general"
	CategoryRestaurant QueueCategory = "restaurant"
	CategoryHospital   QueueCategory = "hospital"
	CategoryBank       QueueCategory = "bank"
)

// Categories lists every queue category the service accepts.
func Categories() []QueueCategory {
	return []QueueCategory{CategoryGeneral, CategoryRestaurant, CategoryHospital, CategoryBank}
}

func (c QueueCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryRestaurant, CategoryHospital, CategoryBank:
		return true
	}
	return false
}

type Queue struct {
	ID                    string        `json:"id"`
	Code                  string        `json:"code"`
	Name                  string        `json:"name"`
	Category              QueueCategory `json:"category"`
	Capacity              int           `json:"capacity"` // 0 = unlimited
	OpenTime              string        `json:"open_time,omitempty"`
	CloseTime             string        `json:"close_time,omitempty"`
	Closed                bool          `json:"closed"`
	EstimatedWaitMinutes  int           `json:"estimated_wait_minutes"`
	AverageServeMinutes   int           `json:"average_serve_minutes"`
	CompletedParticipants int           `json:"completed_participants"`
	Latitude              float64       `json:"latitude"`
	Longitude             float64       `json:"longitude"`
	Creator               string        `json:"creator"`
	CreatedAt             time.Time     `json:"created_at"`

	// DistanceKM is only populated by the nearby lookup, never stored.
	DistanceKM float64 `json:"distance_km,omitempty"`
}

// LineLengthSample is an append-only reading of the waiting-line length,
// recorded once per successful admission.
type LineLengthSample struct {
	ID         string    `json:"id"`
	QueueID    string    `json:"queue_id"`
	Length     int       `json:"length"`
	RecordedAt time.Time `json:"recorded_at"`
}

type FeaturedQueue struct {
	Queue        Queue   `json:"queue"`
	WaitingCount int     `json:"waiting_count"`
	Capacity     int     `json:"capacity"`
	LoadPercent  float64 `json:"load_percent"`
}
