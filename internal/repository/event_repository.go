package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tigertix/ticket-assistant/internal/model"
)

// eventColumns is the canonical select list for rows scanned into
// model.Event.
const eventColumns = `id, name, date, location, description, total_tickets, tickets_sold`

// EventRepo provides persistence for events and owns the atomic
// reservation primitive. tickets_sold is written by Reserve and by
// nothing else; every read of availability derives it from
// total_tickets - tickets_sold.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func scanEvent(row *sql.Row) (*model.Event, error) {
	var e model.Event
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &desc, &e.TotalTickets, &e.TicketsSold)
	if err != nil {
		return nil, err
	}
	e.Description = desc.String
	return &e, nil
}

// List returns every event ordered by date ascending.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
}

// ListAvailable returns only events that still have tickets to sell.
// It is the listing behind the chat "view" intent.
func (r *EventRepo) ListAvailable(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE total_tickets - tickets_sold > 0 ORDER BY date ASC, id ASC`)
}

func (r *EventRepo) list(ctx context.Context, query string) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &desc, &e.TotalTickets, &e.TicketsSold); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Description = desc.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// FindByName resolves a free-text event name to exactly one event.
// It tries a case-insensitive exact match first, then a substring
// match; among several substring hits the shortest name wins as the
// closest match. A blank query never matches anything.
func (r *EventRepo) FindByName(ctx context.Context, nameQuery string) (*model.Event, error) {
	nameQuery = strings.TrimSpace(nameQuery)
	if nameQuery == "" {
		return nil, ErrEventNotFound
	}

	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE LOWER(name) = LOWER(?) LIMIT 1`, nameQuery))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find event: %w", err)
	}

	e, err = scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE LOWER(name) LIKE LOWER(?)
		 ORDER BY LENGTH(name) ASC, id ASC
		 LIMIT 1`, "%"+nameQuery+"%"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

// Reserve atomically sells quantity tickets for the given event.
//
// The capacity check and the increment happen in one conditional
// UPDATE, so the database's own write atomicity is what prevents
// overselling. A read-then-write sequence would let two callers both
// pass the availability check before either writes; the compound WHERE
// clause closes that window. When the UPDATE affects zero rows the
// event either vanished or had too few tickets left at write time, and
// since existence was checked just before, the zero-row outcome maps
// to insufficient capacity.
//
// RemainingTickets on the returned receipt comes from re-reading the
// row after the write, so concurrent sales that land in between are
// reflected rather than reported as still available.
func (r *EventRepo) Reserve(ctx context.Context, eventID int64, quantity int) (*model.Receipt, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// Existence is checked up front so "no such event" and "sold out"
	// produce distinct errors. The row itself is not needed; the write
	// decision belongs to the conditional UPDATE alone.
	if _, err := r.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET tickets_sold = tickets_sold + ?
		 WHERE id = ? AND tickets_sold + ? <= total_tickets`,
		quantity, eventID, quantity)
	if err != nil {
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}
	if affected == 0 {
		// Lost the race (or never had the tickets). Re-read for the
		// true availability at rejection time.
		cur, err := r.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return nil, &InsufficientCapacityError{EventName: cur.Name, Available: cur.Available()}
	}

	after, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &model.Receipt{
		EventName:        after.Name,
		TicketsPurchased: quantity,
		RemainingTickets: after.Available(),
	}, nil
}

// Create inserts a new event with zero tickets sold and returns it
// with its generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (name, date, location, description, total_tickets, tickets_sold)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		e.Name, e.Date, e.Location, e.Description, e.TotalTickets)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = id
	e.TicketsSold = 0
	return nil
}

// Update rewrites the descriptive fields and capacity of an event.
// tickets_sold is deliberately not writable here; shrinking capacity
// below the sold count is refused so the ledger invariant survives
// admin edits.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET name = ?, date = ?, location = ?, description = ?, total_tickets = ?
		 WHERE id = ? AND ? >= tickets_sold`,
		e.Name, e.Date, e.Location, e.Description, e.TotalTickets, e.ID, e.TotalTickets)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		// Zero rows means the event is gone, the new capacity would
		// undercut tickets already sold, or the update was a no-op
		// (MySQL reports changed rows, not matched rows).
		cur, err := r.GetByID(ctx, e.ID)
		if err != nil {
			return err
		}
		if e.TotalTickets < cur.TicketsSold {
			return ErrEventHasSales
		}
	}
	return nil
}

// Delete removes an event that has no ticket sales. Events with sales
// are kept as the audit trail behind issued receipts.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	ev, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev.TicketsSold > 0 {
		return ErrEventHasSales
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND tickets_sold = 0`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return ErrEventHasSales
	}
	return nil
}
