package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/services"
)

type ParticipantHandler struct {
	app          *pocketbase.PocketBase
	participants *services.ParticipantService
}

func NewParticipantHandler(app *pocketbase.PocketBase, participants *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{app: app, participants: participants}
}

func (h *ParticipantHandler) Get(e *core.RequestEvent) error {
	participant, err := h.participants.GetByCode(e.Request.Context(), e.Request.PathValue("code"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, participant)
}

// Start moves a waiting participant into service, claiming a resource when
// the queue's category has one.
func (h *ParticipantHandler) Start(e *core.RequestEvent) error {
	if _, err := requireActor(e); err != nil {
		return err
	}

	var req struct {
		ResourceID string `json:"resource_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	participant, err := h.participants.StartService(e.Request.Context(), e.Request.PathValue("id"), req.ResourceID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, participant)
}

func (h *ParticipantHandler) Complete(e *core.RequestEvent) error {
	if _, err := requireActor(e); err != nil {
		return err
	}

	participant, err := h.participants.CompleteService(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, participant)
}

// Cancel is the participant's own exit from the line.
func (h *ParticipantHandler) Cancel(e *core.RequestEvent) error {
	if err := h.participants.Cancel(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Left the queue"})
}

func (h *ParticipantHandler) NoShow(e *core.RequestEvent) error {
	if _, err := requireActor(e); err != nil {
		return err
	}

	if err := h.participants.MarkNoShow(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Marked as no-show"})
}

// Remove hard-deletes a participant, owner only.
func (h *ParticipantHandler) Remove(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	if err := h.participants.Remove(e.Request.Context(), actor, e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Participant removed"})
}
