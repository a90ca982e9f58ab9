package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/tigertix/ticket-assistant/internal/database"
	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

func newTestService(t *testing.T) (*Service, *repository.EventRepo) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), "booking.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.InitSchema(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	repo := repository.NewEventRepo(db)
	return NewService(repo), repo
}

// seedNearlySoldOut inserts an event with a fixed id, capacity 100 and
// 98 tickets already sold, leaving 2 available.
func seedNearlySoldOut(t *testing.T, repo *repository.EventRepo) int64 {
	t.Helper()
	ev := &model.Event{
		Name:         "AI Tech Expo",
		Date:         "2026-11-20",
		Location:     "Watt Innovation Center",
		Description:  "annual technology showcase",
		TotalTickets: 100,
	}
	if err := repo.Create(context.Background(), ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := repo.Reserve(context.Background(), ev.ID, 98); err != nil {
		t.Fatalf("seed sold count: %v", err)
	}
	return ev.ID
}

func TestProposeThenConfirmDrainsRemainingCapacity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	id := seedNearlySoldOut(t, repo)

	intent := model.Intent{Kind: model.IntentBook, Event: "AI Tech Expo", Tickets: 2}
	prop, err := svc.Propose(ctx, intent)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if !prop.NeedsConfirmation {
		t.Error("proposal must require confirmation")
	}
	if prop.Booking.AvailableTickets != 2 {
		t.Errorf("advertised availability = %d, want 2", prop.Booking.AvailableTickets)
	}
	if prop.Booking.EventID != id || prop.Booking.Tickets != 2 {
		t.Errorf("booking = %+v", prop.Booking)
	}

	// Propose reads only; availability is unchanged until Confirm.
	ev, _ := repo.GetByID(ctx, id)
	if ev.TicketsSold != 98 {
		t.Fatalf("propose mutated ledger: sold=%d", ev.TicketsSold)
	}

	conf, err := svc.Confirm(ctx, id, 2)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if conf.TicketsPurchased != 2 || conf.RemainingTickets != 0 {
		t.Errorf("got purchased=%d remaining=%d, want 2 and 0", conf.TicketsPurchased, conf.RemainingTickets)
	}

	// The event is now sold out; one more ticket must be refused with
	// the true availability.
	_, err = svc.Confirm(ctx, id, 1)
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("got %v, want Rejection", err)
	}
	if rej.Reason != ReasonInsufficientCapacity || rej.Available != 0 {
		t.Errorf("got reason=%q available=%d, want insufficient_capacity and 0", rej.Reason, rej.Available)
	}

	final, _ := repo.GetByID(ctx, id)
	if final.TicketsSold != 100 {
		t.Errorf("sold=%d, want exactly 100", final.TicketsSold)
	}
}

func TestProposeRejections(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedNearlySoldOut(t, repo)

	t.Run("unknown event names the query", func(t *testing.T) {
		_, err := svc.Propose(ctx, model.Intent{Kind: model.IntentBook, Event: "Winter Gala", Tickets: 1})
		var rej *Rejection
		if !errors.As(err, &rej) {
			t.Fatalf("got %v, want Rejection", err)
		}
		if rej.Reason != ReasonNotFound {
			t.Errorf("reason = %q, want %q", rej.Reason, ReasonNotFound)
		}
		if want := `"Winter Gala"`; !strings.Contains(rej.Message, want) {
			t.Errorf("message %q does not quote the query", rej.Message)
		}
	})

	t.Run("over-ask reports true availability", func(t *testing.T) {
		_, err := svc.Propose(ctx, model.Intent{Kind: model.IntentBook, Event: "AI Tech Expo", Tickets: 3})
		var rej *Rejection
		if !errors.As(err, &rej) {
			t.Fatalf("got %v, want Rejection", err)
		}
		if rej.Reason != ReasonInsufficientCapacity || rej.Available != 2 {
			t.Errorf("got reason=%q available=%d, want insufficient_capacity and 2", rej.Reason, rej.Available)
		}
	})

	t.Run("non-book intent refused", func(t *testing.T) {
		_, err := svc.Propose(ctx, model.Intent{Kind: model.IntentView})
		var rej *Rejection
		if !errors.As(err, &rej) || rej.Reason != ReasonNotBookIntent {
			t.Errorf("got %v, want not_book_intent rejection", err)
		}
	})

	t.Run("zero tickets defaults to one", func(t *testing.T) {
		prop, err := svc.Propose(ctx, model.Intent{Kind: model.IntentBook, Event: "AI Tech Expo"})
		if err != nil {
			t.Fatalf("propose: %v", err)
		}
		if prop.Booking.Tickets != 1 {
			t.Errorf("tickets = %d, want 1", prop.Booking.Tickets)
		}
	})
}

func TestConfirmValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, tickets := range []int{0, -5} {
		_, err := svc.Confirm(ctx, 1, tickets)
		var rej *Rejection
		if !errors.As(err, &rej) || rej.Reason != ReasonInvalidQuantity {
			t.Errorf("tickets=%d: got %v, want invalid_quantity rejection", tickets, err)
		}
	}

	_, err := svc.Confirm(ctx, 424242, 1)
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Reason != ReasonNotFound {
		t.Errorf("got %v, want event_not_found rejection", err)
	}
}

func TestFormatEventList(t *testing.T) {
	if got := FormatEventList(nil); got != "Sorry, there are no events with available tickets at the moment." {
		t.Errorf("empty list message = %q", got)
	}

	events := []model.Event{
		{Name: "Jazz Night", Date: "2026-10-01", TotalTickets: 50, TicketsSold: 49},
		{Name: "AI Tech Expo", Date: "2026-11-20", TotalTickets: 100, TicketsSold: 98},
	}
	got := FormatEventList(events)
	for _, want := range []string{"I found 2 events", "Jazz Night on 2026-10-01 (1 ticket available)", "AI Tech Expo on 2026-11-20 (2 tickets available)"} {
		if !strings.Contains(got, want) {
			t.Errorf("list %q missing %q", got, want)
		}
	}
}
