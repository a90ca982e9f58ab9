package model

// Event represents a bookable event as stored in the `events` table.
// Capacity is fixed at creation time; TicketsSold only ever grows and
// is mutated exclusively through the repository's Reserve operation.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – human-readable event name, matched by the locator.
//  Date         – calendar date in ISO form (YYYY-MM-DD).
//  Location     – where the event takes place.
//  Description  – free-text description shown to users.
//  TotalTickets – total sellable tickets (capacity).
//  TicketsSold  – cumulative reservations committed.
type Event struct {
	ID           int64  `json:"id"`            // events.id
	Name         string `json:"name"`          // events.name
	Date         string `json:"date"`          // events.date
	Location     string `json:"location"`      // events.location
	Description  string `json:"description"`   // events.description
	TotalTickets int    `json:"total_tickets"` // events.total_tickets
	TicketsSold  int    `json:"tickets_sold"`  // events.tickets_sold
}

// Available returns the number of tickets still sellable. The row-level
// invariant 0 <= TicketsSold <= TotalTickets keeps this non-negative.
func (e Event) Available() int {
	return e.TotalTickets - e.TicketsSold
}
