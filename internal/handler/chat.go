package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/ticket-assistant/internal/booking"
	"github.com/tigertix/ticket-assistant/internal/llm"
	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/queue"
	"github.com/tigertix/ticket-assistant/internal/repository"
	queue_publisher "github.com/tigertix/ticket-assistant/internal/service"
)

// ChatHandler serves the conversational booking endpoints. Parse turns
// free text into a typed intent and answers it (listing events,
// preparing a booking proposal, or chatting); Confirm commits a
// previously proposed booking against the ledger.
type ChatHandler struct {
	Resolver *llm.Resolver
	Bookings *booking.Service
	Events   *repository.EventRepo
}

// NewChatHandler constructs a ChatHandler. All dependencies must be
// non-nil.
func NewChatHandler(resolver *llm.Resolver, bookings *booking.Service, events *repository.EventRepo) *ChatHandler {
	if resolver == nil || bookings == nil || events == nil {
		panic("nil dependency passed to NewChatHandler")
	}
	return &ChatHandler{Resolver: resolver, Bookings: bookings, Events: events}
}

type parseReq struct {
	Text string `json:"text"`
}

type confirmReq struct {
	EventID int64 `json:"event_id"`
	Tickets int   `json:"tickets"`
}

// Parse handles POST /v1/chat/parse. Domain-level refusals (unknown
// event, not enough tickets) are conversational outcomes, not HTTP
// failures, so they come back as 200 with an error and response field
// the client renders in the chat window.
func (h *ChatHandler) Parse(c echo.Context) error {
	var req parseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Text input required"})
	}

	ctx := c.Request().Context()
	intent := h.Resolver.Resolve(ctx, req.Text)

	switch intent.Kind {
	case model.IntentGreeting, model.IntentChat:
		return c.JSON(http.StatusOK, echo.Map{
			"intent":   intent.Kind,
			"response": intent.Response,
		})

	case model.IntentError:
		return c.JSON(http.StatusOK, echo.Map{
			"error":    intent.Response,
			"response": intent.Response,
		})

	case model.IntentView:
		events, err := h.Events.ListAvailable(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch events"})
		}
		views := make([]eventView, 0, len(events))
		for _, e := range events {
			views = append(views, toView(e))
		}
		return c.JSON(http.StatusOK, echo.Map{
			"intent":   model.IntentView,
			"events":   views,
			"response": booking.FormatEventList(events),
		})

	case model.IntentBook:
		proposal, err := h.Bookings.Propose(ctx, intent)
		if err != nil {
			var rej *booking.Rejection
			if errors.As(err, &rej) {
				resp := echo.Map{"error": rej.Message, "response": rej.Message}
				if rej.Reason == booking.ReasonNotFound {
					resp["suggestion"] = "Try asking to see available events first"
				}
				return c.JSON(http.StatusOK, resp)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process request"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"intent":            model.IntentBook,
			"needsConfirmation": proposal.NeedsConfirmation,
			"booking":           proposal.Booking,
			"message":           proposal.Message,
			"response":          proposal.Response,
		})
	}

	return c.JSON(http.StatusOK, intent)
}

// Confirm handles POST /v1/chat/confirm. Validation failures and
// domain refusals answer 400; only the ledger's conditional write
// decides whether the tickets are sold.
func (h *ChatHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID <= 0 || req.Tickets < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "Event ID and valid ticket count required",
			"message": "Please provide both event ID and number of tickets (must be at least 1)",
		})
	}

	ctx := c.Request().Context()
	conf, err := h.Bookings.Confirm(ctx, req.EventID, req.Tickets)
	if err != nil {
		var rej *booking.Rejection
		if errors.As(err, &rej) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"error":   rej.Message,
				"message": "Booking confirmation failed: " + rej.Message,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   "internal error",
			"message": "An internal error occurred while processing your request",
		})
	}

	// Audit trail via the broker. Failures are logged inside the
	// publisher and must not undo a committed sale.
	userID, _ := getUserID(c)
	event := queue.BookingConfirmedEvent{
		EventID:          req.EventID,
		EventName:        conf.EventName,
		UserID:           userID,
		TicketsPurchased: conf.TicketsPurchased,
		RemainingTickets: conf.RemainingTickets,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingConfirmed(pubCtx, event)
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"eventName":        conf.EventName,
		"ticketsPurchased": conf.TicketsPurchased,
		"remainingTickets": conf.RemainingTickets,
		"message":          conf.Message,
		"response":         conf.Response,
	})
}
