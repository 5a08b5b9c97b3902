package category

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/status"
	"queue-system/models"
)

// RestaurantHandler seats parties at tables. Matching requires a table whose
// capacity covers the party size; the serving table is recorded on the
// participant at completion.
type RestaurantHandler struct{}

func (h *RestaurantHandler) Category() models.QueueCategory { return models.CategoryRestaurant }

func (h *RestaurantHandler) ValidateJoin(req *JoinRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.PartySize, validation.Required, validation.Min(1), validation.Max(50)),
	)
}

func (h *RestaurantHandler) ApplyJoinFields(record *core.Record, req *JoinRequest) {
	record.Set("name", req.Name)
	record.Set("phone", req.Phone)
	record.Set("party_size", req.PartySize)
}

func (h *RestaurantHandler) MatchResource(p models.Participant, candidates []models.Resource, hint string) (*models.Resource, error) {
	for i := range candidates {
		if candidates[i].Capacity >= p.PartySize {
			return &candidates[i], nil
		}
	}
	return nil, status.ErrNoAvailableResource
}

func (h *RestaurantHandler) RequiredCapacity(p models.Participant) int {
	if p.PartySize > 0 {
		return p.PartySize
	}
	return 1
}

func (h *RestaurantHandler) OnComplete(record *core.Record, resource *models.Resource) {
	if resource != nil {
		record.Set("table_served", resource.Name)
	}
}

func (h *RestaurantHandler) DisplayFields() []string { return []string{"party_size", "table_served"} }
