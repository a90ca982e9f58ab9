// Package repository implements all database access for the ticketing
// service. The sentinel and typed errors below let handlers and the
// booking service distinguish the domain-meaningful failure classes:
// a missing event, an impossible quantity, and a reservation that lost
// the race for the last tickets. Anything else bubbling out of this
// package is a storage failure and is surfaced as a generic internal
// error by the transport layer.
package repository

import (
	"errors"
	"fmt"
)

// ErrEventNotFound is returned when no event matches the requested ID
// or name query.
var ErrEventNotFound = errors.New("event not found")

// ErrInvalidQuantity is returned when a reservation asks for zero or a
// negative number of tickets. The ledger is never touched in this case.
var ErrInvalidQuantity = errors.New("ticket quantity must be a positive integer")

// ErrEventHasSales is returned when deleting an event that already has
// sold tickets. Handlers should translate this into an HTTP 409.
var ErrEventHasSales = errors.New("event has sold tickets")

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// InsufficientCapacityError reports a reservation rejected because
// fewer tickets remained than requested at the moment of the
// conditional write. Available carries the true availability observed
// after the write was refused, so callers can offer it to the user.
type InsufficientCapacityError struct {
	EventName string
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	if e.Available == 1 {
		return fmt.Sprintf("only 1 ticket available for %s", e.EventName)
	}
	return fmt.Sprintf("only %d tickets available for %s", e.Available, e.EventName)
}
