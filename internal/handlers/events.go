package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventHandler serves event and ticket-type data for the selection screen
type EventHandler struct {
	backend services.TicketingBackendInterface
	logger  *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(backend services.TicketingBackendInterface, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		backend: backend,
		logger:  logger,
	}
}

// eventResponse pairs an event with its ticket types
type eventResponse struct {
	Event       *models.Event        `json:"event"`
	TicketTypes []*models.TicketType `json:"ticket_types"`
}

// GetEvent returns one event with its ticket types
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.backend.GetEvent(r.Context(), eventID)
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	ticketTypes, err := h.backend.GetTicketTypes(r.Context(), eventID)
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &eventResponse{
		Event:       event,
		TicketTypes: ticketTypes,
	})
}

func (h *EventHandler) writeBackendError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	h.logger.Error("backend request failed", zap.Error(err))
	writeError(w, http.StatusBadGateway, "Ticketing service unavailable")
}
