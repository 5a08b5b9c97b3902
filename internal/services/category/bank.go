package category

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/status"
	"queue-system/models"
)

// BankHandler sends customers to service counters. Matching is capacity-less:
// any available counter serves, unless staff pinned a specific one.
type BankHandler struct{}

func (h *BankHandler) Category() models.QueueCategory { return models.CategoryBank }

func (h *BankHandler) ValidateJoin(req *JoinRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.ServiceType, validation.Length(0, 80)),
	)
}

func (h *BankHandler) ApplyJoinFields(record *core.Record, req *JoinRequest) {
	record.Set("name", req.Name)
	record.Set("phone", req.Phone)
	record.Set("service_type", req.ServiceType)
}

func (h *BankHandler) MatchResource(p models.Participant, candidates []models.Resource, hint string) (*models.Resource, error) {
	if hint != "" {
		for i := range candidates {
			if candidates[i].ID == hint {
				return &candidates[i], nil
			}
		}
		return nil, status.ErrNoAvailableResource
	}
	if len(candidates) == 0 {
		return nil, status.ErrNoAvailableResource
	}
	return &candidates[0], nil
}

func (h *BankHandler) RequiredCapacity(p models.Participant) int { return 1 }

func (h *BankHandler) OnComplete(record *core.Record, resource *models.Resource) {}

func (h *BankHandler) DisplayFields() []string { return []string{"service_type"} }
