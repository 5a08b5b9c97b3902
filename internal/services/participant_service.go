package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"queue-system/config"
	"queue-system/internal/services/category"
	"queue-system/internal/status"
	"queue-system/internal/store"
	"queue-system/models"
	"queue-system/monitoring"
)

// ParticipantService drives one participant through the service lifecycle:
// waiting -> serving -> completed, with the cancelled/no_show/removed side
// exits.
type ParticipantService struct {
	App      core.App
	Redis    *redis.Client
	Registry *category.Registry
	Config   *config.Config
	Notifier *Notifier
}

func NewParticipantService(app core.App, redisClient *redis.Client, registry *category.Registry, notifier *Notifier, cfg *config.Config) *ParticipantService {
	return &ParticipantService{
		App:      app,
		Redis:    redisClient,
		Registry: registry,
		Config:   cfg,
		Notifier: notifier,
	}
}

// StartService moves a waiting participant into service, claiming a
// category-matched resource. Strict guard: any non-waiting state is
// ErrInvalidTransition.
func (s *ParticipantService) StartService(ctx context.Context, participantID, resourceHint string) (*models.Participant, error) {
	var participant models.Participant
	var queueCode string

	err := s.App.RunInTransaction(func(tx core.App) error {
		record, err := store.ParticipantByID(tx, participantID)
		if err != nil {
			return err
		}
		if record.GetString("state") != string(models.StateWaiting) {
			return status.ErrInvalidTransition
		}

		queueRecord, err := store.QueueByID(tx, record.GetString("queue"))
		if err != nil {
			return err
		}
		queueCode = queueRecord.GetString("code")
		handler := s.Registry.Resolve(models.QueueCategory(queueRecord.GetString("category")))
		p := store.ParticipantFromRecord(record)

		if err := s.claimResource(tx, handler, p, record, resourceHint); err != nil {
			return err
		}

		record.Set("state", string(models.StateServing))
		record.Set("service_started_at", time.Now())
		record.Set("position", 0)
		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}

		if err := RenumberWaiting(tx, queueRecord.Id); err != nil {
			return err
		}

		participant = store.ParticipantFromRecord(record)
		return nil
	})
	if err != nil {
		monitoring.TrackTransition("start_service", "error")
		return nil, err
	}

	monitoring.TrackTransition("start_service", "success")
	s.Notifier.NotifyParticipant(ctx, participant.Code, "called", map[string]any{
		"number": participant.Number,
	})
	s.Notifier.Publish(QueueChannel(queueCode), map[string]any{
		"type":   "now_serving",
		"number": participant.Number,
	})

	slog.Info("service started", "queue", queueCode, "number", participant.Number)
	return &participant, nil
}

// claimResource resolves a resource through the category handler and claims
// it. Losing a claim race drops the candidate and retries against the rest
// of the pool before giving up with ErrNoAvailableResource.
func (s *ParticipantService) claimResource(tx core.App, handler category.Handler, p models.Participant, record *core.Record, hint string) error {
	records, err := store.AvailableResources(tx, p.QueueID)
	if err != nil {
		return err
	}
	candidates := make([]models.Resource, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, store.ResourceFromRecord(r))
	}

	for {
		chosen, err := handler.MatchResource(p, candidates, hint)
		if err != nil {
			return err
		}
		if chosen == nil {
			// Category without a resource step (general).
			return nil
		}

		_, err = Claim(tx, chosen.ID, record, handler.RequiredCapacity(p))
		if err == nil {
			return nil
		}
		if !errors.Is(err, status.ErrInvalidState) {
			return err
		}

		// Claimed out from under us; drop the candidate and retry.
		remaining := candidates[:0]
		for _, c := range candidates {
			if c.ID != chosen.ID {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) == len(candidates) {
			return status.ErrNoAvailableResource
		}
		candidates = remaining
	}
}

// CompleteService finishes a serving participant: freezes the waited time,
// feeds the rolling averages, releases the resource. Lenient by design:
// completing a non-serving participant is a silent no-op, unlike the strict
// start guard.
func (s *ParticipantService) CompleteService(ctx context.Context, participantID string) (*models.Participant, error) {
	var participant models.Participant
	var queueCode string
	noop := false

	err := s.App.RunInTransaction(func(tx core.App) error {
		record, err := store.ParticipantByID(tx, participantID)
		if err != nil {
			return err
		}
		if record.GetString("state") != string(models.StateServing) {
			noop = true
			participant = store.ParticipantFromRecord(record)
			return nil
		}

		queueRecord, err := store.QueueByID(tx, record.GetString("queue"))
		if err != nil {
			return err
		}
		queueCode = queueRecord.GetString("code")
		handler := s.Registry.Resolve(models.QueueCategory(queueRecord.GetString("category")))

		now := time.Now()
		joinedAt := record.GetDateTime("joined_at").Time()
		startedAt := record.GetDateTime("service_started_at").Time()
		waited := DurationMinutes(joinedAt, startedAt)
		served := DurationMinutes(startedAt, now)

		var resource *models.Resource
		if resourceID := record.GetString("resource"); resourceID != "" {
			if resourceRecord, err := store.ResourceByID(tx, resourceID); err == nil {
				r := store.ResourceFromRecord(resourceRecord)
				resource = &r
			}
		}
		handler.OnComplete(record, resource)

		if resource != nil {
			if err := Release(tx, resource.ID); err != nil {
				return err
			}
		}

		record.Set("state", string(models.StateCompleted))
		record.Set("service_completed_at", now)
		record.Set("waited_minutes", waited)
		record.Set("resource", "")
		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}

		applyCompletionStats(queueRecord, waited, served)
		if err := tx.Save(queueRecord); err != nil {
			return fmt.Errorf("save queue stats: %w", err)
		}

		monitoring.ObserveServeDuration(queueCode, float64(served))
		participant = store.ParticipantFromRecord(record)
		return nil
	})
	if err != nil {
		monitoring.TrackTransition("complete_service", "error")
		return nil, err
	}
	if noop {
		return &participant, nil
	}

	monitoring.TrackTransition("complete_service", "success")
	s.Notifier.NotifyParticipant(ctx, participant.Code, "completed", nil)
	s.Notifier.Publish(QueueChannel(queueCode), map[string]any{
		"type":   "service_completed",
		"number": participant.Number,
	})
	return &participant, nil
}

// Cancel is the participant-initiated exit from the waiting line.
func (s *ParticipantService) Cancel(ctx context.Context, participantID string) error {
	err := s.App.RunInTransaction(func(tx core.App) error {
		record, err := store.ParticipantByID(tx, participantID)
		if err != nil {
			return err
		}
		if record.GetString("state") != string(models.StateWaiting) {
			return status.ErrInvalidTransition
		}

		record.Set("state", string(models.StateCancelled))
		record.Set("position", 0)
		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}
		return RenumberWaiting(tx, record.GetString("queue"))
	})
	if err != nil {
		monitoring.TrackTransition("cancel", "error")
		return err
	}
	monitoring.TrackTransition("cancel", "success")
	return nil
}

// MarkNoShow flags a waiting participant who did not appear when called.
// Guard: serving, cancelled and completed participants cannot no-show.
func (s *ParticipantService) MarkNoShow(ctx context.Context, participantID string) error {
	var code string
	err := s.App.RunInTransaction(func(tx core.App) error {
		record, err := store.ParticipantByID(tx, participantID)
		if err != nil {
			return err
		}
		switch record.GetString("state") {
		case string(models.StateServing), string(models.StateCancelled), string(models.StateCompleted):
			return status.ErrInvalidTransition
		}

		waited := DurationMinutes(record.GetDateTime("joined_at").Time(), time.Now())
		record.Set("state", string(models.StateNoShow))
		record.Set("waited_minutes", waited)
		record.Set("position", 0)
		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}
		code = record.GetString("code")
		return RenumberWaiting(tx, record.GetString("queue"))
	})
	if err != nil {
		monitoring.TrackTransition("no_show", "error")
		return err
	}
	monitoring.TrackTransition("no_show", "success")
	s.Notifier.NotifyParticipant(ctx, code, "no_show", nil)
	return nil
}

// Remove hard-deletes a participant. Owner-only; waiting participants leave
// a gap that is renumbered away in the same transaction.
func (s *ParticipantService) Remove(ctx context.Context, actor, participantID string) error {
	err := s.App.RunInTransaction(func(tx core.App) error {
		record, err := store.ParticipantByID(tx, participantID)
		if err != nil {
			return err
		}
		queueRecord, err := store.QueueByID(tx, record.GetString("queue"))
		if err != nil {
			return err
		}
		if queueRecord.GetString("creator") != actor {
			return status.ErrUnauthorized
		}

		wasWaiting := record.GetString("state") == string(models.StateWaiting)
		if resourceID := record.GetString("resource"); resourceID != "" {
			if err := Release(tx, resourceID); err != nil {
				return err
			}
		}
		if err := tx.Delete(record); err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		if wasWaiting {
			return RenumberWaiting(tx, queueRecord.Id)
		}
		return nil
	})
	if err != nil {
		monitoring.TrackTransition("remove", "error")
		return err
	}
	monitoring.TrackTransition("remove", "success")
	return nil
}

// GetByCode returns the participant with its current lifecycle fields.
func (s *ParticipantService) GetByCode(ctx context.Context, code string) (*models.Participant, error) {
	record, err := store.ParticipantByCode(s.App, code)
	if err != nil {
		return nil, err
	}
	p := store.ParticipantFromRecord(record)
	return &p, nil
}
