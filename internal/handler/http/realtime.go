package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/gorilla/websocket"
)

// Broadcaster is the part of realtime.Hub the handlers need.
type Broadcaster interface {
	Subscribe(userID string, sink realtime.Sink) *realtime.Subscription
	Unsubscribe(id string)
	Publish(evt realtime.Event) int
}

type RealtimeHandler interface {
	// Stream serves attendance events as Server-Sent Events
	Stream(w http.ResponseWriter, r *http.Request)
	// WebSocket serves the same events over a websocket
	WebSocket(w http.ResponseWriter, r *http.Request)
	Broadcast(w http.ResponseWriter, r *http.Request)
}

type realtimeHandlerImpl struct {
	hub      Broadcaster
	upgrader *websocket.Upgrader
}

func NewRealtimeHandler(hub Broadcaster, allowedOrigins []string) RealtimeHandler {
	return &realtimeHandlerImpl{
		hub:      hub,
		upgrader: realtime.NewUpgrader(allowedOrigins),
	}
}

// Stream handles GET /realtime/attendance?userId=
func (h *realtimeHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	sink, err := realtime.NewSSESink(w)
	if err != nil {
		slog.Error("Failed to open event stream", "error", err)
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	sub := h.hub.Subscribe(userID, sink)
	defer h.hub.Unsubscribe(sub.ID)

	select {
	case <-r.Context().Done():
	case <-sub.Done():
	}
}

// WebSocket handles GET /realtime/attendance/ws?userId=
func (h *realtimeHandlerImpl) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	sink := realtime.NewWebSocketSink(conn)
	sub := h.hub.Subscribe(userID, sink)
	defer h.hub.Unsubscribe(sub.ID)

	go sink.PingLoop(sub.Done())
	sink.ReadPump()
}

// Broadcast handles POST /realtime/broadcast
func (h *realtimeHandlerImpl) Broadcast(w http.ResponseWriter, r *http.Request) {
	var evt realtime.Event
	if !decodeJSON(w, r, &evt) {
		return
	}

	switch evt.Type {
	case realtime.EventCheckIn, realtime.EventCheckOut, realtime.EventUpdate:
	default:
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "type",
			Message: "type must be one of: checkin checkout update",
		}})
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	delivered := h.hub.Publish(evt)
	slog.Debug("Realtime event broadcast", "type", evt.Type, "employee_id", evt.EmployeeID, "delivered", delivered)
	response.OK(w)
}
