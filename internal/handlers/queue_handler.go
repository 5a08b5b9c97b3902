package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/services"
	"queue-system/internal/services/category"
	"queue-system/security"
)

type QueueHandler struct {
	app         *pocketbase.PocketBase
	queues      *services.QueueService
	discovery   *services.DiscoveryService
	reports     *services.ReportService
	rateLimiter *security.RateLimiter
}

func NewQueueHandler(app *pocketbase.PocketBase, queues *services.QueueService, discovery *services.DiscoveryService, reports *services.ReportService, rateLimiter *security.RateLimiter) *QueueHandler {
	return &QueueHandler{
		app:         app,
		queues:      queues,
		discovery:   discovery,
		reports:     reports,
		rateLimiter: rateLimiter,
	}
}

// requireActor resolves the authenticated caller for owner-only operations.
func requireActor(e *core.RequestEvent) (string, error) {
	if e.Auth == nil {
		return "", apis.NewUnauthorizedError("Authentication required", nil)
	}
	return e.Auth.Id, nil
}

func (h *QueueHandler) Create(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	var req services.CreateQueueRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	queue, err := h.queues.CreateQueue(e.Request.Context(), actor, req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, queue)
}

func (h *QueueHandler) Get(e *core.RequestEvent) error {
	queue, err := h.queues.GetQueue(e.Request.Context(), e.Request.PathValue("code"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) Edit(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	var req services.EditQueueRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	queue, err := h.queues.EditQueue(e.Request.Context(), actor, e.Request.PathValue("code"), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) Delete(e *core.RequestEvent) error {
	actor, err := requireActor(e)
	if err != nil {
		return err
	}

	if err := h.queues.DeleteQueue(e.Request.Context(), actor, e.Request.PathValue("code")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Queue deleted"})
}

// Join admits a caller into the waiting line. Rate limited per phone+IP
// since it is the one unauthenticated write.
func (h *QueueHandler) Join(e *core.RequestEvent) error {
	if security.SuspiciousUserAgent(e.Request.UserAgent()) {
		return apis.NewForbiddenError("Access denied", nil)
	}

	var req category.JoinRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	identity := req.Phone
	if identity == "" {
		identity = e.RealIP()
	}
	if h.rateLimiter != nil && !h.rateLimiter.Allow(e.Request.Context(), identity) {
		return e.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "Too many requests, try again later",
		})
	}

	participant, err := h.queues.Join(e.Request.Context(), e.Request.PathValue("code"), &req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, participant)
}

func (h *QueueHandler) Nearby(e *core.RequestEvent) error {
	query := e.Request.URL.Query()
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		return apis.NewBadRequestError("lat is required", err)
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		return apis.NewBadRequestError("lon is required", err)
	}
	radius := 5.0
	if raw := query.Get("radius_km"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return apis.NewBadRequestError("radius_km must be a number", err)
		}
	}

	queues, err := h.discovery.Nearby(e.Request.Context(), lat, lon, radius)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"queues": queues, "count": len(queues)})
}

func (h *QueueHandler) Featured(e *core.RequestEvent) error {
	featured, err := h.discovery.TopFeatured(e.Request.Context(), e.Request.URL.Query().Get("category"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"queues": featured})
}

func (h *QueueHandler) Stats(e *core.RequestEvent) error {
	from, err := parseDateParam(e.Request.URL.Query().Get("from"))
	if err != nil {
		return apis.NewBadRequestError("from must be RFC3339", err)
	}
	to, err := parseDateParam(e.Request.URL.Query().Get("to"))
	if err != nil {
		return apis.NewBadRequestError("to must be RFC3339", err)
	}

	stats, err := h.reports.Stats(e.Request.Context(), e.Request.PathValue("code"), from, to)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, stats)
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
