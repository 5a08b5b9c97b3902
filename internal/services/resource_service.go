package services

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/status"
	"queue-system/internal/store"
	"queue-system/models"
)

// ResourceService manages a queue's pool of assignable units (tables,
// doctors, counters) and the claim/release pair the scheduler uses.
type ResourceService struct {
	App core.App
}

func NewResourceService(app core.App) *ResourceService {
	return &ResourceService{App: app}
}

type ResourceRequest struct {
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Specialty string `json:"specialty"`
}

func (r ResourceRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&r.Capacity, validation.Min(0)),
		validation.Field(&r.Specialty, validation.Length(0, 80)),
	)
}

// AddResource creates a resource of the kind the queue's category schedules.
// Owner-only; general queues have no resource step and reject additions.
func (s *ResourceService) AddResource(ctx context.Context, actor, queueCode string, req ResourceRequest) (*models.Resource, error) {
	queueRecord, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return nil, err
	}
	if queueRecord.GetString("creator") != actor {
		return nil, status.ErrUnauthorized
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrValidation, err)
	}

	kind, ok := models.KindForCategory(models.QueueCategory(queueRecord.GetString("category")))
	if !ok {
		return nil, fmt.Errorf("%w: %s queues have no resources", status.ErrValidation, queueRecord.GetString("category"))
	}

	record, err := store.NewResource(s.App)
	if err != nil {
		return nil, err
	}
	record.Set("name", req.Name)
	record.Set("kind", string(kind))
	record.Set("capacity", req.Capacity)
	record.Set("specialty", req.Specialty)
	record.Set("status", string(models.ResourceAvailable))
	record.Set("queue", queueRecord.Id)

	if err := s.App.Save(record); err != nil {
		return nil, fmt.Errorf("save resource: %w", err)
	}

	resource := store.ResourceFromRecord(record)
	return &resource, nil
}

type EditResourceRequest struct {
	Name      *string `json:"name"`
	Capacity  *int    `json:"capacity"`
	Specialty *string `json:"specialty"`
	Status    *string `json:"status"`
}

// EditResource updates pool metadata. A busy resource can only change
// metadata, not be flipped away from busy by hand.
func (s *ResourceService) EditResource(ctx context.Context, actor, resourceID string, req EditResourceRequest) (*models.Resource, error) {
	record, queueRecord, err := s.resourceWithQueue(resourceID)
	if err != nil {
		return nil, err
	}
	if queueRecord.GetString("creator") != actor {
		return nil, status.ErrUnauthorized
	}

	if req.Name != nil {
		record.Set("name", *req.Name)
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, fmt.Errorf("%w: capacity must not be negative", status.ErrValidation)
		}
		record.Set("capacity", *req.Capacity)
	}
	if req.Specialty != nil {
		record.Set("specialty", *req.Specialty)
	}
	if req.Status != nil {
		next := models.ResourceStatus(*req.Status)
		if next != models.ResourceAvailable && next != models.ResourceUnavailable {
			return nil, fmt.Errorf("%w: status must be available or unavailable", status.ErrValidation)
		}
		if record.GetString("status") == string(models.ResourceBusy) {
			return nil, status.ErrInvalidState
		}
		record.Set("status", string(next))
	}

	if err := s.App.Save(record); err != nil {
		return nil, fmt.Errorf("save resource: %w", err)
	}
	resource := store.ResourceFromRecord(record)
	return &resource, nil
}

// DeleteResource removes a pool unit. Busy resources must be released first.
func (s *ResourceService) DeleteResource(ctx context.Context, actor, resourceID string) error {
	record, queueRecord, err := s.resourceWithQueue(resourceID)
	if err != nil {
		return err
	}
	if queueRecord.GetString("creator") != actor {
		return status.ErrUnauthorized
	}
	if record.GetString("status") == string(models.ResourceBusy) {
		return status.ErrInvalidState
	}
	return s.App.Delete(record)
}

// ListResources returns the queue's full pool.
func (s *ResourceService) ListResources(ctx context.Context, queueCode string) ([]models.Resource, error) {
	queueRecord, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return nil, err
	}
	records, err := store.QueueResources(s.App, queueRecord.Id)
	if err != nil {
		return nil, err
	}
	resources := make([]models.Resource, 0, len(records))
	for _, r := range records {
		resources = append(resources, store.ResourceFromRecord(r))
	}
	return resources, nil
}

// FindAvailable returns the first available resource with enough capacity,
// or nil when none matches. Callers must not rely on any tie-break beyond
// "first in creation order".
func FindAvailable(app core.App, queueID string, requiredCapacity int) (*models.Resource, error) {
	records, err := store.AvailableResources(app, queueID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.GetInt("capacity") >= requiredCapacity {
			resource := store.ResourceFromRecord(r)
			return &resource, nil
		}
	}
	return nil, nil
}

// Claim marks the resource busy and cross-links it with the participant.
// Both sides of the reference change in the caller's transaction so the
// pair is atomic; a concurrent claim loses with ErrInvalidState.
func Claim(tx core.App, resourceID string, participantRecord *core.Record, requiredCapacity int) (*core.Record, error) {
	record, err := store.ResourceByID(tx, resourceID)
	if err != nil {
		return nil, err
	}
	if err := claimRecord(record, participantRecord, requiredCapacity); err != nil {
		return nil, err
	}
	if err := tx.Save(record); err != nil {
		return nil, fmt.Errorf("claim resource: %w", err)
	}
	return record, nil
}

// claimRecord guards and applies the assignment on the in-memory pair. A
// rejected claim leaves both records untouched.
func claimRecord(record, participantRecord *core.Record, requiredCapacity int) error {
	if record.GetString("status") != string(models.ResourceAvailable) {
		return status.ErrInvalidState
	}
	if record.GetInt("capacity") < requiredCapacity {
		return status.ErrCapacityExceeded
	}
	record.Set("status", string(models.ResourceBusy))
	record.Set("assigned_to", participantRecord.Id)
	participantRecord.Set("resource", record.Id)
	return nil
}

// Release returns a resource to the pool and clears both sides of the
// assignment. Idempotent: releasing an already-available resource is a
// no-op.
func Release(tx core.App, resourceID string) error {
	record, err := store.ResourceByID(tx, resourceID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return err
	}
	holder := record.GetString("assigned_to")
	if !releaseRecord(record) {
		return nil
	}

	if holder != "" {
		if participant, err := store.ParticipantByID(tx, holder); err == nil {
			if participant.GetString("resource") == record.Id {
				participant.Set("resource", "")
				if err := tx.Save(participant); err != nil {
					return fmt.Errorf("clear participant resource: %w", err)
				}
			}
		}
	}

	if err := tx.Save(record); err != nil {
		return fmt.Errorf("release resource: %w", err)
	}
	return nil
}

// releaseRecord returns the in-memory resource to the pool. It reports false
// when the resource was already settled and nothing changed.
func releaseRecord(record *core.Record) bool {
	if record.GetString("status") == string(models.ResourceAvailable) && record.GetString("assigned_to") == "" {
		return false
	}
	record.Set("status", string(models.ResourceAvailable))
	record.Set("assigned_to", "")
	return true
}

func (s *ResourceService) resourceWithQueue(resourceID string) (*core.Record, *core.Record, error) {
	record, err := store.ResourceByID(s.App, resourceID)
	if err != nil {
		return nil, nil, err
	}
	queueRecord, err := store.QueueByID(s.App, record.GetString("queue"))
	if err != nil {
		return nil, nil, err
	}
	return record, queueRecord, nil
}
