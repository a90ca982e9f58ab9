package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

// EventHandler serves the public, read-only event catalog.
type EventHandler struct {
	Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
	if events == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

// eventView is the public shape of an event, carrying the derived
// availability so clients never need the raw sold counter.
type eventView struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Date             string `json:"date"`
	Location         string `json:"location"`
	Description      string `json:"description"`
	TotalTickets     int    `json:"total_tickets"`
	AvailableTickets int    `json:"available_tickets"`
}

func toView(e model.Event) eventView {
	return eventView{
		ID:               e.ID,
		Name:             e.Name,
		Date:             e.Date,
		Location:         e.Location,
		Description:      e.Description,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.Available(),
	}
}

// List handles GET /v1/events. With ?available=true only events that
// still have tickets are returned.
func (h *EventHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		events []model.Event
		err    error
	)
	if c.QueryParam("available") == "true" {
		events, err = h.Events.ListAvailable(ctx)
	} else {
		events, err = h.Events.List(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch events"})
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toView(e))
	}
	return c.JSON(http.StatusOK, views)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch event"})
	}
	return c.JSON(http.StatusOK, toView(*ev))
}
