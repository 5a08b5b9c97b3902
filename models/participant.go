package models

import (
	"time"
)

type ParticipantState string

const (
	StateWaiting   ParticipantState = "waiting"
	StateServing   ParticipantState = "serving"
	StateCompleted ParticipantState = "completed"
	StateCancelled ParticipantState = "cancelled"
	StateNoShow    ParticipantState = "no_show"
)

type Participant struct {
	ID                 string           `json:"id"`
	Code               string           `json:"code"`
	Number             string           `json:"number"`
	Position           int              `json:"position,omitempty"` // 0 once serving/terminal
	State              ParticipantState `json:"state"`
	Name               string           `json:"name"`
	Phone              string           `json:"phone,omitempty"`
	JoinedAt           time.Time        `json:"joined_at"`
	ServiceStartedAt   *time.Time       `json:"service_started_at,omitempty"`
	ServiceCompletedAt *time.Time       `json:"service_completed_at,omitempty"`
	WaitedMinutes      int              `json:"waited_minutes"`
	QueueID            string           `json:"queue_id"`
	ResourceID         string           `json:"resource_id,omitempty"`

	// Category-specific fields, populated by the matching category handler.
	PartySize    int    `json:"party_size,omitempty"`    // restaurant
	MedicalField string `json:"medical_field,omitempty"` // hospital
	Priority     int    `json:"priority,omitempty"`      // hospital
	ServiceType  string `json:"service_type,omitempty"`  // bank
	TableServed  string `json:"table_served,omitempty"`  // restaurant, set on completion
}

// Terminal reports whether the participant can no longer move through the line.
func (s ParticipantState) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateNoShow:
		return true
	}
	return false
}
