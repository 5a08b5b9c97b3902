// Package store is the repository layer over the PocketBase collections.
// All reads/writes of queues, participants, resources and line_lengths go
// through here; callers pass the core.App (or the tx-scoped app inside
// RunInTransaction) they want the operation bound to.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"queue-system/internal/status"
	"queue-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

const (
	CollectionQueues       = "queues"
	CollectionParticipants = "participants"
	CollectionResources    = "resources"
	CollectionLineLengths  = "line_lengths"
)

func QueueByCode(app core.App, code string) (*core.Record, error) {
	record, err := app.FindFirstRecordByFilter(CollectionQueues, "code = {:code}", dbx.Params{"code": code})
	if err != nil {
		return nil, status.ErrNotFound
	}
	return record, nil
}

func QueueByID(app core.App, id string) (*core.Record, error) {
	record, err := app.FindRecordById(CollectionQueues, id)
	if err != nil {
		return nil, status.ErrNotFound
	}
	return record, nil
}

func ParticipantByID(app core.App, id string) (*core.Record, error) {
	record, err := app.FindRecordById(CollectionParticipants, id)
	if err != nil {
		return nil, status.ErrNotFound
	}
	return record, nil
}

func ParticipantByCode(app core.App, code string) (*core.Record, error) {
	record, err := app.FindFirstRecordByFilter(CollectionParticipants, "code = {:code}", dbx.Params{"code": code})
	if err != nil {
		return nil, status.ErrNotFound
	}
	return record, nil
}

func ResourceByID(app core.App, id string) (*core.Record, error) {
	record, err := app.FindRecordById(CollectionResources, id)
	if err != nil {
		return nil, status.ErrNotFound
	}
	return record, nil
}

// WaitingCount returns the number of waiting participants in the queue.
func WaitingCount(app core.App, queueID string) (int, error) {
	total, err := app.CountRecords(CollectionParticipants,
		dbx.HashExp{"queue": queueID, "state": string(models.StateWaiting)})
	if err != nil {
		return 0, fmt.Errorf("count waiting: %w", err)
	}
	return int(total), nil
}

// WaitingOrdered returns the waiting participants ordered by join time, the
// order positions are assigned in.
func WaitingOrdered(app core.App, queueID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(CollectionParticipants,
		"queue = {:queue} && state = 'waiting'", "joined_at", 0, 0,
		dbx.Params{"queue": queueID})
	if err != nil {
		return nil, fmt.Errorf("list waiting: %w", err)
	}
	return records, nil
}

func ServingParticipants(app core.App, queueID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(CollectionParticipants,
		"queue = {:queue} && state = 'serving'", "service_started_at", 0, 0,
		dbx.Params{"queue": queueID})
	if err != nil {
		return nil, fmt.Errorf("list serving: %w", err)
	}
	return records, nil
}

// AvailableResources lists the queue's available resources in creation order.
func AvailableResources(app core.App, queueID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(CollectionResources,
		"queue = {:queue} && status = 'available'", "created", 0, 0,
		dbx.Params{"queue": queueID})
	if err != nil {
		return nil, fmt.Errorf("list available resources: %w", err)
	}
	return records, nil
}

func QueueResources(app core.App, queueID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(CollectionResources,
		"queue = {:queue}", "created", 0, 0, dbx.Params{"queue": queueID})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return records, nil
}

func AllQueues(app core.App) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(CollectionQueues, "id != ''", "created", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	return records, nil
}

// CodeExists reports whether a generated code already collides with a row.
// Only a definitive no-rows answer counts as free; a failed lookup propagates
// so the caller never treats an unreadable table as an open namespace.
func CodeExists(app core.App, collection, code string) (bool, error) {
	_, err := app.FindFirstRecordByFilter(collection, "code = {:code}", dbx.Params{"code": code})
	return classifyCodeLookup(err)
}

func classifyCodeLookup(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("code lookup: %w", err)
	}
}

// AppendLineLength records one admission-time line length sample.
func AppendLineLength(app core.App, queueID string, length int, at time.Time) error {
	collection, err := app.FindCollectionByNameOrId(CollectionLineLengths)
	if err != nil {
		return err
	}
	sample := core.NewRecord(collection)
	sample.Set("queue", queueID)
	sample.Set("length", length)
	sample.Set("recorded_at", at)
	return app.Save(sample)
}

func NewParticipant(app core.App) (*core.Record, error) {
	collection, err := app.FindCollectionByNameOrId(CollectionParticipants)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(collection), nil
}

func NewQueue(app core.App) (*core.Record, error) {
	collection, err := app.FindCollectionByNameOrId(CollectionQueues)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(collection), nil
}

func NewResource(app core.App) (*core.Record, error) {
	collection, err := app.FindCollectionByNameOrId(CollectionResources)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(collection), nil
}

// IsNotFound normalizes lookups layered over this package.
func IsNotFound(err error) bool {
	return errors.Is(err, status.ErrNotFound)
}
