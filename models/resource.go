package models

type ResourceKind string

const (
	ResourceTable   ResourceKind = "table"
	ResourceDoctor  ResourceKind = "doctor"
	ResourceCounter ResourceKind = "counter"
)

type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceBusy        ResourceStatus = "busy"
	ResourceUnavailable ResourceStatus = "unavailable"
)

type Resource struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       ResourceKind   `json:"kind"`
	Capacity   int            `json:"capacity"`
	Specialty  string         `json:"specialty,omitempty"` // hospital doctors
	Status     ResourceStatus `json:"status"`
	QueueID    string         `json:"queue_id"`
	AssignedTo string         `json:"assigned_to,omitempty"`
}

// KindForCategory maps a queue category to the resource subtype it schedules.
// General queues have no resource step.
func KindForCategory(category QueueCategory) (ResourceKind, bool) {
	switch category {
	case CategoryRestaurant:
		return ResourceTable, true
	case CategoryHospital:
		return ResourceDoctor, true
	case CategoryBank:
		return ResourceCounter, true
	}
	return "", false
}
