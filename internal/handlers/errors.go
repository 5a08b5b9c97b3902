package handlers

import (
	"errors"

	"github.com/pocketbase/pocketbase/apis"

	"queue-system/internal/status"
)

// apiError translates service sentinels into HTTP errors so every join or
// transition failure stays distinguishable to the client.
func apiError(err error) error {
	switch {
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError("Not found", err)
	case errors.Is(err, status.ErrUnauthorized):
		return apis.NewForbiddenError("Not allowed", err)
	case errors.Is(err, status.ErrQueueClosed):
		return apis.NewBadRequestError("Queue is closed", err)
	case errors.Is(err, status.ErrQueueFull):
		return apis.NewBadRequestError("Queue is full", err)
	case errors.Is(err, status.ErrInsufficientTime):
		return apis.NewBadRequestError("Not enough time before closing", err)
	case errors.Is(err, status.ErrAlreadyInQueue):
		return apis.NewBadRequestError("Already in this queue", err)
	case errors.Is(err, status.ErrInvalidTransition):
		return apis.NewBadRequestError("Invalid state transition", err)
	case errors.Is(err, status.ErrNoAvailableResource):
		return apis.NewBadRequestError("No matching resource available", err)
	case errors.Is(err, status.ErrCapacityExceeded):
		return apis.NewBadRequestError("Resource capacity exceeded", err)
	case errors.Is(err, status.ErrInvalidState):
		return apis.NewBadRequestError("Operation not allowed in current state", err)
	case errors.Is(err, status.ErrValidation):
		return apis.NewBadRequestError("Invalid request", err)
	case errors.Is(err, status.ErrConflict):
		return apis.NewBadRequestError("Conflicting update, retry", err)
	default:
		return apis.NewBadRequestError("Request failed", err)
	}
}
