package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"spurt/internal/delivery/api/response"
	"spurt/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// EventHandlerParams holds dependencies for EventHandler, injected by Fx.
type EventHandlerParams struct {
	fx.In

	EventUC usecase.EventUsecase
	Logger  *slog.Logger
}

// EventHandler serves event publishing and browsing
type EventHandler struct {
	eventUC usecase.EventUsecase
	logger  *slog.Logger
}

// NewEventHandler is the constructor for EventHandler
func NewEventHandler(params EventHandlerParams) *EventHandler {
	return &EventHandler{
		eventUC: params.EventUC,
		logger:  params.Logger,
	}
}

// CreateEventRequest represents the request body for publishing an event
type CreateEventRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Details string `json:"details"`
}

// CreateEvent handles event creation
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid event input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	event, err := h.eventUC.CreateEvent(c.Request().Context(), &usecase.CreateEventInput{
		Title:   req.Title,
		Details: req.Details,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, event)
}

// ListEvents handles listing every event with its images
func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.eventUC.ListEvents(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, events)
}

// GetEvent handles retrieving a single event
func (h *EventHandler) GetEvent(c echo.Context) error {
	eventID, err := parseID(c.Param("eventId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid event ID")
	}

	event, err := h.eventUC.GetEvent(c.Request().Context(), eventID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, event)
}

// EventShareQR handles rendering the share QR code of an event as PNG
func (h *EventHandler) EventShareQR(c echo.Context) error {
	eventID, err := parseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid event ID")
	}

	png, err := h.eventUC.EventShareQR(c.Request().Context(), eventID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// parseID parses a positive decimal path parameter.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}

	return id, nil
}
