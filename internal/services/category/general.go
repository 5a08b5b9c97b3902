package category

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/models"
)

// GeneralHandler is the default category: plain first-come-first-served
// lines with no resource step.
type GeneralHandler struct{}

func (h *GeneralHandler) Category() models.QueueCategory { return models.CategoryGeneral }

func (h *GeneralHandler) ValidateJoin(req *JoinRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
	)
}

func (h *GeneralHandler) ApplyJoinFields(record *core.Record, req *JoinRequest) {
	record.Set("name", req.Name)
	record.Set("phone", req.Phone)
}

func (h *GeneralHandler) MatchResource(p models.Participant, candidates []models.Resource, hint string) (*models.Resource, error) {
	return nil, nil
}

func (h *GeneralHandler) RequiredCapacity(p models.Participant) int { return 1 }

func (h *GeneralHandler) OnComplete(record *core.Record, resource *models.Resource) {}

func (h *GeneralHandler) DisplayFields() []string { return nil }
