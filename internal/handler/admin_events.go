package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

// AdminEventHandler implements the event CRUD used by administrators.
// The routes behind it are guarded by JWTAuth plus RequireRole(ADMIN).
// Note that tickets_sold is not writable here under any circumstances;
// only the reservation path moves it.
type AdminEventHandler struct {
	Events *repository.EventRepo
}

// NewAdminEventHandler constructs an AdminEventHandler.
func NewAdminEventHandler(events *repository.EventRepo) *AdminEventHandler {
	if events == nil {
		panic("nil repository passed to NewAdminEventHandler")
	}
	return &AdminEventHandler{Events: events}
}

type eventReq struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	TotalTickets int    `json:"total_tickets"`
}

func (r *eventReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Date = strings.TrimSpace(r.Date)
	if r.Name == "" {
		return "event name is required"
	}
	if r.Location == "" {
		return "event location is required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return "event date must be in YYYY-MM-DD form"
	}
	if r.TotalTickets < 0 {
		return "total_tickets must be a non-negative integer"
	}
	return ""
}

// Create handles POST /v1/admin/events.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev := model.Event{
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		TotalTickets: req.TotalTickets,
	}
	if err := h.Events.Create(c.Request().Context(), &ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, toView(ev))
}

// Update handles PUT /v1/admin/events/:id. Shrinking capacity below
// the sold count is refused with 409.
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev := model.Event{
		ID:           id,
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		TotalTickets: req.TotalTickets,
	}
	ctx := c.Request().Context()
	if err := h.Events.Update(ctx, &ev); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrEventHasSales):
			return c.JSON(http.StatusConflict, echo.Map{"error": "capacity cannot drop below tickets already sold"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
		}
	}
	updated, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, toView(*updated))
}

// Delete handles DELETE /v1/admin/events/:id. Events with sales are
// kept as the audit trail behind issued receipts and answer 409.
func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrEventHasSales):
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has sold tickets and cannot be deleted"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
