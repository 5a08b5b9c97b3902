package store

import (
	"time"

	"queue-system/models"

	"github.com/pocketbase/pocketbase/core"
)

// QueueFromRecord converts a queues record into the API model.
func QueueFromRecord(r *core.Record) models.Queue {
	return models.Queue{
		ID:                    r.Id,
		Code:                  r.GetString("code"),
		Name:                  r.GetString("name"),
		Category:              models.QueueCategory(r.GetString("category")),
		Capacity:              r.GetInt("capacity"),
		OpenTime:              r.GetString("open_time"),
		CloseTime:             r.GetString("close_time"),
		Closed:                r.GetBool("closed"),
		EstimatedWaitMinutes:  r.GetInt("estimated_wait_minutes"),
		AverageServeMinutes:   r.GetInt("average_serve_minutes"),
		CompletedParticipants: r.GetInt("completed_participants"),
		Latitude:              r.GetFloat("latitude"),
		Longitude:             r.GetFloat("longitude"),
		Creator:               r.GetString("creator"),
		CreatedAt:             r.GetDateTime("created").Time(),
	}
}

// ParticipantFromRecord converts a participants record into the API model.
func ParticipantFromRecord(r *core.Record) models.Participant {
	p := models.Participant{
		ID:            r.Id,
		Code:          r.GetString("code"),
		Number:        r.GetString("number"),
		Position:      r.GetInt("position"),
		State:         models.ParticipantState(r.GetString("state")),
		Name:          r.GetString("name"),
		Phone:         r.GetString("phone"),
		JoinedAt:      r.GetDateTime("joined_at").Time(),
		WaitedMinutes: r.GetInt("waited_minutes"),
		QueueID:       r.GetString("queue"),
		ResourceID:    r.GetString("resource"),
		PartySize:     r.GetInt("party_size"),
		MedicalField:  r.GetString("medical_field"),
		Priority:      r.GetInt("priority"),
		ServiceType:   r.GetString("service_type"),
		TableServed:   r.GetString("table_served"),
	}
	p.ServiceStartedAt = timePtr(r, "service_started_at")
	p.ServiceCompletedAt = timePtr(r, "service_completed_at")
	return p
}

// ResourceFromRecord converts a resources record into the API model.
func ResourceFromRecord(r *core.Record) models.Resource {
	return models.Resource{
		ID:         r.Id,
		Name:       r.GetString("name"),
		Kind:       models.ResourceKind(r.GetString("kind")),
		Capacity:   r.GetInt("capacity"),
		Specialty:  r.GetString("specialty"),
		Status:     models.ResourceStatus(r.GetString("status")),
		QueueID:    r.GetString("queue"),
		AssignedTo: r.GetString("assigned_to"),
	}
}

func timePtr(r *core.Record, field string) *time.Time {
	dt := r.GetDateTime(field)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}
