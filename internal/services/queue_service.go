package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"queue-system/config"
	"queue-system/internal/services/category"
	"queue-system/internal/status"
	"queue-system/internal/store"
	"queue-system/models"
	"queue-system/monitoring"
)

// QueueService owns the queue aggregate: admission, capacity/open-hours
// guards, rolling statistics and waiting-position bookkeeping.
type QueueService struct {
	App      core.App
	Redis    *redis.Client
	Registry *category.Registry
	Config   *config.Config
	Notifier *Notifier
}

func NewQueueService(app core.App, redisClient *redis.Client, registry *category.Registry, notifier *Notifier, cfg *config.Config) *QueueService {
	return &QueueService{
		App:      app,
		Redis:    redisClient,
		Registry: registry,
		Config:   cfg,
		Notifier: notifier,
	}
}

type CreateQueueRequest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Capacity  int     `json:"capacity"`
	OpenTime  string  `json:"open_time"`
	CloseTime string  `json:"close_time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r CreateQueueRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.Capacity, validation.Min(0)),
		validation.Field(&r.OpenTime, validation.Date("15:04")),
		validation.Field(&r.CloseTime, validation.Date("15:04")),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// CreateQueue registers a new waiting line owned by the actor. Unknown
// categories are rejected here rather than silently degrading at dispatch.
func (s *QueueService) CreateQueue(ctx context.Context, actor string, req CreateQueueRequest) (*models.Queue, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrValidation, err)
	}
	if !models.QueueCategory(req.Category).Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", status.ErrValidation, req.Category)
	}
	if (req.OpenTime == "") != (req.CloseTime == "") {
		return nil, fmt.Errorf("%w: open_time and close_time must be set together", status.ErrValidation)
	}

	var queue models.Queue
	err := s.App.RunInTransaction(func(tx core.App) error {
		code, err := uniqueCode(tx, store.CollectionQueues, s.Config.QueueCodeSize, s.Config.CodeGenRetries)
		if err != nil {
			return err
		}

		record, err := store.NewQueue(tx)
		if err != nil {
			return err
		}
		record.Set("code", code)
		record.Set("name", req.Name)
		record.Set("category", req.Category)
		record.Set("capacity", req.Capacity)
		record.Set("open_time", req.OpenTime)
		record.Set("close_time", req.CloseTime)
		record.Set("closed", false)
		record.Set("estimated_wait_minutes", 0)
		record.Set("average_serve_minutes", 0)
		record.Set("completed_participants", 0)
		record.Set("latitude", req.Latitude)
		record.Set("longitude", req.Longitude)
		record.Set("creator", actor)

		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save queue: %w", err)
		}
		queue = store.QueueFromRecord(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("queue created", "code", queue.Code, "category", queue.Category)
	return &queue, nil
}

type EditQueueRequest struct {
	Name      *string  `json:"name"`
	Capacity  *int     `json:"capacity"`
	OpenTime  *string  `json:"open_time"`
	CloseTime *string  `json:"close_time"`
	Closed    *bool    `json:"closed"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// EditQueue applies a partial update; only the queue owner may edit.
func (s *QueueService) EditQueue(ctx context.Context, actor, queueCode string, req EditQueueRequest) (*models.Queue, error) {
	record, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return nil, err
	}
	if record.GetString("creator") != actor {
		return nil, status.ErrUnauthorized
	}

	if req.Name != nil {
		if err := validation.Validate(*req.Name, validation.Required, validation.Length(1, 120)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", status.ErrValidation, err)
		}
		record.Set("name", *req.Name)
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, fmt.Errorf("%w: capacity must not be negative", status.ErrValidation)
		}
		record.Set("capacity", *req.Capacity)
	}
	if req.OpenTime != nil {
		record.Set("open_time", *req.OpenTime)
	}
	if req.CloseTime != nil {
		record.Set("close_time", *req.CloseTime)
	}
	if req.Closed != nil {
		record.Set("closed", *req.Closed)
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return nil, fmt.Errorf("%w: latitude out of range", status.ErrValidation)
		}
		record.Set("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return nil, fmt.Errorf("%w: longitude out of range", status.ErrValidation)
		}
		record.Set("longitude", *req.Longitude)
	}

	if err := s.App.Save(record); err != nil {
		return nil, fmt.Errorf("save queue: %w", err)
	}

	queue := store.QueueFromRecord(record)
	return &queue, nil
}

// DeleteQueue removes a queue and, through cascade, its participants,
// resources and line-length samples.
func (s *QueueService) DeleteQueue(ctx context.Context, actor, queueCode string) error {
	record, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return err
	}
	if record.GetString("creator") != actor {
		return status.ErrUnauthorized
	}
	return s.App.Delete(record)
}

// Join admits a participant into the queue. Guard order: closed, full,
// insufficient time before close, payload validation, duplicate join.
func (s *QueueService) Join(ctx context.Context, queueCode string, req *category.JoinRequest) (*models.Participant, error) {
	queueRecord, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		monitoring.TrackJoin(queueCode, "not_found")
		return nil, err
	}
	queue := store.QueueFromRecord(queueRecord)
	handler := s.Registry.Resolve(queue.Category)
	now := time.Now()

	if !IsOpenNow(queue, now) {
		monitoring.TrackJoin(queue.Code, "closed")
		return nil, status.ErrQueueClosed
	}

	waiting, err := store.WaitingCount(s.App, queue.ID)
	if err != nil {
		return nil, err
	}
	if IsFull(queue, waiting) {
		monitoring.TrackJoin(queue.Code, "full")
		return nil, status.ErrQueueFull
	}
	if !HasEnoughTimeRemaining(queue, waiting, now) {
		monitoring.TrackJoin(queue.Code, "insufficient_time")
		return nil, status.ErrInsufficientTime
	}
	if err := handler.ValidateJoin(req); err != nil {
		monitoring.TrackJoin(queue.Code, "invalid")
		return nil, fmt.Errorf("%w: %v", status.ErrValidation, err)
	}
	if err := s.dedupeJoin(ctx, queue.ID, req.Phone); err != nil {
		monitoring.TrackJoin(queue.Code, "duplicate")
		return nil, err
	}

	var participant models.Participant
	err = s.App.RunInTransaction(func(tx core.App) error {
		// The counter read and the insert share one write transaction so
		// concurrent joins serialize and can never mint the same number.
		counterRecord, err := store.QueueByID(tx, queue.ID)
		if err != nil {
			return err
		}
		number := issueNumber(counterRecord)
		if err := tx.Save(counterRecord); err != nil {
			return fmt.Errorf("advance number counter: %w", err)
		}

		code, err := uniqueCode(tx, store.CollectionParticipants, s.Config.ParticipantCodeSize, s.Config.CodeGenRetries)
		if err != nil {
			return err
		}

		count, err := store.WaitingCount(tx, queue.ID)
		if err != nil {
			return err
		}

		record, err := store.NewParticipant(tx)
		if err != nil {
			return err
		}
		record.Set("code", code)
		record.Set("number", number)
		record.Set("position", count+1)
		record.Set("state", string(models.StateWaiting))
		record.Set("joined_at", now)
		record.Set("queue", queue.ID)
		handler.ApplyJoinFields(record, req)

		if err := tx.Save(record); err != nil {
			return fmt.Errorf("save participant: %w", err)
		}

		// Admission sample for peak/average line-length reporting.
		if err := store.AppendLineLength(tx, queue.ID, count+1, now); err != nil {
			return fmt.Errorf("record admission: %w", err)
		}

		participant = store.ParticipantFromRecord(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackJoin(queue.Code, "success")
	s.Notifier.Publish(QueueChannel(queue.Code), map[string]any{
		"type":     "participant_joined",
		"number":   participant.Number,
		"position": participant.Position,
	})

	slog.Info("participant joined", "queue", queue.Code, "number", participant.Number, "position", participant.Position)
	return &participant, nil
}

// dedupeJoin blocks the same phone joining the same queue twice within the
// dedupe window. Best effort: a dead Redis never blocks admissions.
func (s *QueueService) dedupeJoin(ctx context.Context, queueID, phone string) error {
	if s.Redis == nil || phone == "" {
		return nil
	}
	key := fmt.Sprintf("join:dedupe:%s:%s", queueID, phone)
	ok, err := s.Redis.SetNX(ctx, key, 1, s.Config.JoinDedupeTTL).Result()
	if err != nil {
		slog.Warn("join dedupe check failed", "error", err)
		return nil
	}
	if !ok {
		return status.ErrAlreadyInQueue
	}
	return nil
}

// RenumberWaiting reassigns dense 1..N positions over the waiting set,
// ordered by join time. Must run inside the caller's transaction.
func RenumberWaiting(tx core.App, queueID string) error {
	waiting, err := store.WaitingOrdered(tx, queueID)
	if err != nil {
		return err
	}
	for _, i := range renumber(waiting) {
		if err := tx.Save(waiting[i]); err != nil {
			return fmt.Errorf("renumber position %d: %w", waiting[i].GetInt("position"), err)
		}
	}
	return nil
}

// renumber assigns dense 1..N positions over the ordered records in place and
// returns the indexes whose position actually changed.
func renumber(records []*core.Record) []int {
	changed := make([]int, 0)
	for i, record := range records {
		if record.GetInt("position") == i+1 {
			continue
		}
		record.Set("position", i+1)
		changed = append(changed, i)
	}
	return changed
}

// issueNumber advances the queue's persisted number counter and returns the
// freshly minted participant number. The caller saves the queue record in the
// same transaction as the participant insert.
func issueNumber(queueRecord *core.Record) string {
	next := NextNumber(queueRecord.GetString("last_number"))
	queueRecord.Set("last_number", next)
	return next
}

// applyCompletionStats folds one completed service into the queue's rolling
// averages. Both means share one completed_participants denominator which is
// incremented exactly once per completion.
func applyCompletionStats(queueRecord *core.Record, waitedMinutes, serveMinutes int) {
	n := queueRecord.GetInt("completed_participants")
	queueRecord.Set("estimated_wait_minutes",
		CeilRollingMean(queueRecord.GetInt("estimated_wait_minutes"), n, waitedMinutes))
	queueRecord.Set("average_serve_minutes",
		CeilRollingMean(queueRecord.GetInt("average_serve_minutes"), n, serveMinutes))
	queueRecord.Set("completed_participants", n+1)
}

// GetQueue returns the queue by its public code.
func (s *QueueService) GetQueue(ctx context.Context, queueCode string) (*models.Queue, error) {
	record, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return nil, err
	}
	queue := store.QueueFromRecord(record)
	return &queue, nil
}
