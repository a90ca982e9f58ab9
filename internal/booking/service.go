// Package booking composes the intent, locator and ledger layers into
// the two-step propose/confirm flow. Propose never mutates inventory;
// Confirm is the only path that does, and it delegates the capacity
// decision entirely to the repository's conditional write.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

// Rejection reasons, stable for clients that branch on them.
const (
	ReasonNotFound             = "event_not_found"
	ReasonInsufficientCapacity = "insufficient_capacity"
	ReasonInvalidQuantity      = "invalid_quantity"
	ReasonNotBookIntent        = "not_book_intent"
)

// Rejection is a domain-level refusal of a propose or confirm call. It
// carries a conversational message ready to show the user, so the
// transport layer does not compose error prose.
type Rejection struct {
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Available int    `json:"available,omitempty"` // true availability for capacity rejections
}

func (r *Rejection) Error() string { return r.Message }

// Service orchestrates bookings over the event repository.
type Service struct {
	events *repository.EventRepo
}

// NewService constructs a Service. The repository must be non-nil.
func NewService(events *repository.EventRepo) *Service {
	if events == nil {
		panic("nil repository passed to booking.NewService")
	}
	return &Service{events: events}
}

// Proposal is the propose-step result: a preview plus conversational
// text, explicitly marked as requiring confirmation before any ticket
// is sold.
type Proposal struct {
	Booking           model.ProposedBooking `json:"booking"`
	NeedsConfirmation bool                  `json:"needsConfirmation"`
	Message           string                `json:"message"`
	Response          string                `json:"response"`
}

// Propose resolves a book intent against the catalog and pre-checks
// advertised availability. It reads but never writes: a proposal that
// is abandoned needs no cleanup. The availability figure in the
// returned proposal is advisory; Confirm re-derives it from the
// ledger.
func (s *Service) Propose(ctx context.Context, intent model.Intent) (*Proposal, error) {
	if intent.Kind != model.IntentBook {
		return nil, &Rejection{
			Reason:  ReasonNotBookIntent,
			Message: "I can only prepare bookings from a booking request. Try something like 'Book 2 tickets for Jazz Night'.",
		}
	}
	tickets := intent.Tickets
	if tickets == 0 {
		tickets = 1
	}
	if tickets < 1 {
		return nil, &Rejection{
			Reason:  ReasonInvalidQuantity,
			Message: "The number of tickets must be at least 1.",
		}
	}

	ev, err := s.events.FindByName(ctx, intent.Event)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, &Rejection{
				Reason: ReasonNotFound,
				Message: fmt.Sprintf("I couldn't find an event called %q. Would you like to see all available events?",
					intent.Event),
			}
		}
		return nil, fmt.Errorf("locate event: %w", err)
	}

	if avail := ev.Available(); avail < tickets {
		msg := fmt.Sprintf("Sorry, %s is sold out.", ev.Name)
		if avail > 0 {
			msg = fmt.Sprintf("Sorry, only %s available for %s. Would you like to book %d instead?",
				pluralTickets(avail), ev.Name, avail)
		}
		return nil, &Rejection{
			Reason:    ReasonInsufficientCapacity,
			Message:   msg,
			Available: avail,
		}
	}

	return &Proposal{
		Booking: model.ProposedBooking{
			EventID:          ev.ID,
			EventName:        ev.Name,
			EventDate:        ev.Date,
			EventLocation:    ev.Location,
			Tickets:          tickets,
			AvailableTickets: ev.Available(),
		},
		NeedsConfirmation: true,
		Message:           fmt.Sprintf("Ready to book %s for %s. Please confirm.", pluralTickets(tickets), ev.Name),
		Response: fmt.Sprintf("I'm ready to book %s for %s on %s at %s. Please confirm your booking.",
			pluralTickets(tickets), ev.Name, ev.Date, ev.Location),
	}, nil
}

// Confirmation is the confirm-step result wrapping the ledger receipt.
type Confirmation struct {
	model.Receipt
	Message  string `json:"message"`
	Response string `json:"response"`
}

// Confirm commits the reservation. Input is validated before the
// ledger is touched; the propose-time snapshot is never consulted, the
// conditional write's own check is authoritative. Returned errors are
// either a *Rejection (domain refusal) or a wrapped storage failure.
func (s *Service) Confirm(ctx context.Context, eventID int64, tickets int) (*Confirmation, error) {
	if tickets < 1 {
		return nil, &Rejection{
			Reason:  ReasonInvalidQuantity,
			Message: "Please provide both event ID and number of tickets (must be at least 1).",
		}
	}

	receipt, err := s.events.Reserve(ctx, eventID, tickets)
	if err != nil {
		var insufficient *repository.InsufficientCapacityError
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, &Rejection{Reason: ReasonNotFound, Message: "That event no longer exists."}
		case errors.As(err, &insufficient):
			return nil, &Rejection{
				Reason: ReasonInsufficientCapacity,
				Message: fmt.Sprintf("Booking failed: only %s left for %s. Tickets may have been sold by another user.",
					pluralTickets(insufficient.Available), insufficient.EventName),
				Available: insufficient.Available,
			}
		case errors.Is(err, repository.ErrInvalidQuantity):
			return nil, &Rejection{Reason: ReasonInvalidQuantity, Message: "The number of tickets must be at least 1."}
		default:
			return nil, fmt.Errorf("confirm booking: %w", err)
		}
	}

	return &Confirmation{
		Receipt: *receipt,
		Message: fmt.Sprintf("Successfully booked %s for %s", pluralTickets(receipt.TicketsPurchased), receipt.EventName),
		Response: fmt.Sprintf("Your booking is confirmed! You have successfully booked %s for %s. %s remaining.",
			pluralTickets(receipt.TicketsPurchased), receipt.EventName, pluralTickets(receipt.RemainingTickets)),
	}, nil
}

// FormatEventList renders events into the conversational summary used
// by the view intent.
func FormatEventList(events []model.Event) string {
	if len(events) == 0 {
		return "Sorry, there are no events with available tickets at the moment."
	}
	list := make([]string, 0, len(events))
	for _, e := range events {
		list = append(list, fmt.Sprintf("%s on %s (%s available)", e.Name, e.Date, pluralTickets(e.Available())))
	}
	plural := "s"
	if len(events) == 1 {
		plural = ""
	}
	out := fmt.Sprintf("I found %d event%s with available tickets: ", len(events), plural)
	for i, item := range list {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}

func pluralTickets(n int) string {
	if n == 1 {
		return "1 ticket"
	}
	return fmt.Sprintf("%d tickets", n)
}
