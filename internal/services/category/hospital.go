package category

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/status"
	"queue-system/models"
)

// HospitalHandler matches patients to doctors strictly by specialty. There
// is no fallback to an unrelated doctor.
type HospitalHandler struct{}

func (h *HospitalHandler) Category() models.QueueCategory { return models.CategoryHospital }

func (h *HospitalHandler) ValidateJoin(req *JoinRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.MedicalField, validation.Required, validation.Length(1, 80)),
		validation.Field(&req.Priority, validation.Min(0), validation.Max(10)),
	)
}

func (h *HospitalHandler) ApplyJoinFields(record *core.Record, req *JoinRequest) {
	record.Set("name", req.Name)
	record.Set("phone", req.Phone)
	record.Set("medical_field", req.MedicalField)
	record.Set("priority", req.Priority)
}

func (h *HospitalHandler) MatchResource(p models.Participant, candidates []models.Resource, hint string) (*models.Resource, error) {
	for i := range candidates {
		if candidates[i].Specialty == p.MedicalField {
			return &candidates[i], nil
		}
	}
	return nil, status.ErrNoAvailableResource
}

func (h *HospitalHandler) RequiredCapacity(p models.Participant) int { return 1 }

func (h *HospitalHandler) OnComplete(record *core.Record, resource *models.Resource) {}

func (h *HospitalHandler) DisplayFields() []string { return []string{"medical_field", "priority"} }
