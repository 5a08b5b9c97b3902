package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/services"
)

const heartbeatInterval = 15 * time.Second

type LiveHandler struct {
	app  *pocketbase.PocketBase
	live *services.LiveService
}

func NewLiveHandler(app *pocketbase.PocketBase, live *services.LiveService) *LiveHandler {
	return &LiveHandler{app: app, live: live}
}

// QueueStream streams a queue's board over SSE until the client hangs up.
func (h *LiveHandler) QueueStream(e *core.RequestEvent) error {
	sink, unsubscribe := h.live.SubscribeQueue(e.Request.PathValue("code"))
	defer unsubscribe()
	return h.stream(e, sink)
}

// ParticipantStream streams one participant's live view over SSE.
func (h *LiveHandler) ParticipantStream(e *core.RequestEvent) error {
	sink, unsubscribe := h.live.SubscribeParticipant(e.Request.PathValue("code"))
	defer unsubscribe()
	return h.stream(e, sink)
}

func (h *LiveHandler) stream(e *core.RequestEvent, sink <-chan []byte) error {
	flusher, ok := e.Response.(http.Flusher)
	if !ok {
		return apis.NewBadRequestError("Streaming unsupported", nil)
	}

	e.Response.Header().Set("Content-Type", "text/event-stream")
	e.Response.Header().Set("Cache-Control", "no-cache")
	e.Response.Header().Set("Connection", "keep-alive")
	e.Response.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := e.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, open := <-sink:
			if !open {
				return nil
			}
			fmt.Fprintf(e.Response, "data: %s\n\n", snapshot)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(e.Response, ": ping\n\n")
			flusher.Flush()
		}
	}
}
