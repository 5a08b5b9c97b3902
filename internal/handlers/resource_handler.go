package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/services"
)

type ResourceHandler struct {
	app       *pocketbase.PocketBase
	resources *services.ResourceService
}

func NewResourceHandler(app *pocketbase.PocketBase, resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{app: app, resources: resources}
}

func (h *ResourceHandler) Add(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	var req services.ResourceRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	resource, err := h.resources.AddResource(e.Request.Context(), actor, e.Request.PathValue("code"), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, resource)
}

func (h *ResourceHandler) List(e *core.RequestEvent) error {
	resources, err := h.resources.ListResources(e.Request.Context(), e.Request.PathValue("code"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"resources": resources})
}

func (h *ResourceHandler) Edit(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	var req services.EditResourceRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	resource, err := h.resources.EditResource(e.Request.Context(), actor, e.Request.PathValue("id"), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, resource)
}

func (h *ResourceHandler) Delete(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	if err := h.resources.DeleteResource(e.Request.Context(), actor, e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Resource deleted"})
}
