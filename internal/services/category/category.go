// Package category holds the per-vertical behavior behind queue handling.
// Each queue category (general, restaurant, hospital, bank) gets one Handler
// implementation; a read-only Registry built at startup resolves them.
package category

import (
	"queue-system/models"

	"github.com/pocketbase/pocketbase/core"
)

// JoinRequest is the category-sensitive part of an admission payload.
type JoinRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	PartySize    int    `json:"party_size"`
	MedicalField string `json:"medical_field"`
	Priority     int    `json:"priority"`
	ServiceType  string `json:"service_type"`
}

// Handler customizes participant creation, resource matching and completion
// bookkeeping for one queue category.
type Handler interface {
	Category() models.QueueCategory

	// ValidateJoin checks the category-specific payload fields.
	ValidateJoin(req *JoinRequest) error

	// ApplyJoinFields copies the category-specific payload onto the new
	// participant record.
	ApplyJoinFields(record *core.Record, req *JoinRequest)

	// MatchResource picks a resource for the participant out of the queue's
	// available candidates. A (nil, nil) return means the category has no
	// resource step. A non-matching candidate set returns
	// status.ErrNoAvailableResource.
	MatchResource(p models.Participant, candidates []models.Resource, hint string) (*models.Resource, error)

	// RequiredCapacity is the capacity the matched resource must hold.
	RequiredCapacity(p models.Participant) int

	// OnComplete records category bookkeeping on the participant before the
	// held resource is released.
	OnComplete(record *core.Record, resource *models.Resource)

	// DisplayFields names the extension fields the live board shows.
	DisplayFields() []string
}

// Registry resolves category handlers. It is populated once and never
// mutated afterwards; handlers are stateless and shared.
type Registry struct {
	handlers map[models.QueueCategory]Handler
	fallback Handler
}

func NewRegistry() *Registry {
	general := &GeneralHandler{}
	r := &Registry{
		handlers: map[models.QueueCategory]Handler{
			models.CategoryGeneral:    general,
			models.CategoryRestaurant: &RestaurantHandler{},
			models.CategoryHospital:   &HospitalHandler{},
			models.CategoryBank:       &BankHandler{},
		},
		fallback: general,
	}
	return r
}

// Resolve returns the handler for the category. Unknown categories resolve
// to the general handler; queue creation already rejects them, this only
// shields dispatch on pre-existing rows.
func (r *Registry) Resolve(category models.QueueCategory) Handler {
	if h, ok := r.handlers[category]; ok {
		return h
	}
	return r.fallback
}
