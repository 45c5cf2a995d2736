package model

import "time"

// SeatClass is the fare/cabin category of a ticket.  Economy and
// business inventories are tracked independently per flight.
type SeatClass string

const (
    SeatClassEconomy  SeatClass = "economy"
    SeatClassBusiness SeatClass = "business"
)

// Valid reports whether the class is one of the two known cabins.
func (c SeatClass) Valid() bool {
    return c == SeatClassEconomy || c == SeatClassBusiness
}

// TicketStatus tracks a ticket through its lifecycle:
//
//  booked      – created into a basket; counts against the flight's
//                availability counter.
//  available   – released by the hold-window sweeper; no longer counts
//                against inventory and is eligible for reclamation when
//                another customer books the same flight and class.
//  checked_out – the owning order passed checkout validation and was
//                priced; the seat is sold.
type TicketStatus string

const (
    TicketStatusAvailable  TicketStatus = "available"
    TicketStatusBooked     TicketStatus = "booked"
    TicketStatusCheckedOut TicketStatus = "checked_out"
)

// Ticket represents a single seat reservation in the `tickets` table.
// A ticket always belongs to a flight; it belongs to an order only
// once the customer has moved it out of the basket.  The seat number
// stays null until the customization step and, when set, is unique
// among the flight's tickets of the same class.
//
// Fields:
//  ID         – primary key identifier.
//  FlightID   – flight this seat is on.
//  OrderID    – owning order (null while still in a basket).
//  SeatClass  – economy or business.
//  SeatNumber – 1-based seat number within the class (null until chosen).
//  Status     – lifecycle status, see TicketStatus.
//  CreatedAt  – timestamp of creation; the hold window is measured from it.
//  UpdatedAt  – timestamp of last update.
type Ticket struct {
    ID         uint64       // tickets.id
    FlightID   uint64       // tickets.flight_id
    OrderID    *uint64      // tickets.order_id (nullable)
    SeatClass  SeatClass    // tickets.seat_class
    SeatNumber *uint32      // tickets.seat_number (nullable)
    Status     TicketStatus // tickets.status
    CreatedAt  time.Time    // tickets.created_at
    UpdatedAt  time.Time    // tickets.updated_at
}
