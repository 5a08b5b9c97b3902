package models

import (
	"time"
)

// BoardEntry is one row of a queue's live board.
type BoardEntry struct {
	Code     string `json:"code"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	ETA      int    `json:"eta_minutes"`
}

// QueueSnapshot is what a queue-board subscriber sees on each live update.
type QueueSnapshot struct {
	QueueCode    string       `json:"queue_code"`
	Waiting      []BoardEntry `json:"waiting"`
	NowServing   []string     `json:"now_serving"` // participant numbers
	NextInLine   string       `json:"next_in_line,omitempty"`
	WaitingCount int          `json:"waiting_count"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// ParticipantSnapshot is the single-participant live view.
type ParticipantSnapshot struct {
	Code                string           `json:"code"`
	Number              string           `json:"number"`
	State               ParticipantState `json:"state"`
	Position            int              `json:"position,omitempty"`
	ETA                 int              `json:"eta_minutes"`
	UnreadNotifications int              `json:"unread_notifications"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// QueueStats is the read-side reporting snapshot for one queue, optionally
// bounded by a date range.
type QueueStats struct {
	QueueCode         string  `json:"queue_code"`
	TotalJoined       int     `json:"total_joined"`
	WaitingCount      int     `json:"waiting_count"`
	ServingCount      int     `json:"serving_count"`
	CompletedCount    int     `json:"completed_count"`
	CancelledCount    int     `json:"cancelled_count"`
	NoShowCount       int     `json:"no_show_count"`
	ServedPercent     float64 `json:"served_percent"`
	CancelledPercent  float64 `json:"cancelled_percent"`
	NoShowPercent     float64 `json:"no_show_percent"`
	MinWaitMinutes    int     `json:"min_wait_minutes"`
	AvgWaitMinutes    float64 `json:"avg_wait_minutes"`
	MaxWaitMinutes    int     `json:"max_wait_minutes"`
	MinServeMinutes   int     `json:"min_serve_minutes"`
	AvgServeMinutes   float64 `json:"avg_serve_minutes"`
	MaxServeMinutes   int     `json:"max_serve_minutes"`
	PeakLineLength    int     `json:"peak_line_length"`
	AverageLineLength float64 `json:"average_line_length"`
}
