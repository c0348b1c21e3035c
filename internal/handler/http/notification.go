package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	SendEmail(w http.ResponseWriter, r *http.Request)
	SendWhatsApp(w http.ResponseWriter, r *http.Request)

	// Stats reports the outbox counters
	Stats(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	gateway    notification.Gateway
	dispatcher notification.Dispatcher
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(gateway notification.Gateway, dispatcher notification.Dispatcher) NotificationHandler {
	return &notificationHandlerImpl{
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}

// SendEmail delivers a message synchronously, bypassing the outbox and the enabled flag
func (h *notificationHandlerImpl) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req notification.SendEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result := h.gateway.SendEmail(r.Context(), req)
	writeResult(w, result)
}

// SendWhatsApp delivers a message synchronously
func (h *notificationHandlerImpl) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req notification.SendWhatsAppRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result := h.gateway.SendWhatsApp(r.Context(), req)
	writeResult(w, result)
}

func (h *notificationHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.dispatcher.Stats())
}

// writeResult maps a failed delivery to 502 so callers can tell it apart from bad input.
func writeResult(w http.ResponseWriter, result notification.Result) {
	if result.Failed() {
		response.BadGateway(w, result.Error, result)
		return
	}
	response.Success(w, result)
}
