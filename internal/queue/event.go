// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the booking
// audit log.
package queue

// BookingConfirmedEvent is published after the ledger commits a
// reservation. It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type BookingConfirmedEvent struct {
	EventID          int64  `json:"event_id"`
	EventName        string `json:"event_name"`
	UserID           int64  `json:"user_id"`
	TicketsPurchased int    `json:"tickets_purchased"`
	RemainingTickets int    `json:"remaining_tickets"`
	ConfirmedAt      string `json:"confirmed_at"`
}
