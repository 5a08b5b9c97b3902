package status

import "errors"

var (
	ErrValidation              = errors.New("validation: invalid input")
	ErrQueueClosed             = errors.New("queue: closed")
	ErrQueueFull               = errors.New("queue: at capacity")
	ErrInsufficientTime        = errors.New("queue: not enough time before closing")
	ErrInvalidTransition       = errors.New("participant: invalid state transition")
	ErrNoAvailableResource     = errors.New("resource: no matching resource available")
	ErrCapacityExceeded        = errors.New("resource: capacity exceeded")
	ErrInvalidState            = errors.New("resource: not available")
	ErrUnauthorized            = errors.New("auth: actor is not the queue owner")
	ErrNotFound                = errors.New("record not found")
	ErrCodeGenerationExhausted = errors.New("codegen: retry budget exhausted")
	ErrConflict                = errors.New("conflict: concurrent update lost")
	ErrAlreadyInQueue          = errors.New("queue: already joined")
)
