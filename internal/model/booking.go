package model

// ProposedBooking is the non-committal preview returned by the propose
// step. It is held by the client between propose and confirm and is
// never persisted. AvailableTickets is a display-only snapshot taken at
// propose time; confirm re-derives correctness from the ledger and
// never trusts it.
type ProposedBooking struct {
	EventID          int64  `json:"eventId"`
	EventName        string `json:"eventName"`
	EventDate        string `json:"eventDate"`
	EventLocation    string `json:"eventLocation"`
	Tickets          int    `json:"tickets"`
	AvailableTickets int    `json:"availableTickets"`
}

// Receipt reports a committed reservation. RemainingTickets is computed
// from the post-write row so it never overstates availability when
// writes race.
type Receipt struct {
	EventName        string `json:"eventName"`
	TicketsPurchased int    `json:"ticketsPurchased"`
	RemainingTickets int    `json:"remainingTickets"`
}
