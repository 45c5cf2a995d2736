package model

// Facility is a bookable add-on such as breakfast, lunch or extra
// luggage, as stored in the `facilities` table.
//
// Fields:
//  ID   – primary key identifier.
//  Name – unique human-readable name.
type Facility struct {
    ID   uint64 // facilities.id
    Name string // facilities.name
}

// FlightFacility prices a facility on a particular flight.  The same
// facility may cost differently on different routes.
//
// Fields:
//  ID         – primary key identifier.
//  FlightID   – flight offering the facility.
//  FacilityID – facility being offered.
//  PriceCents – price per unit in cents.
type FlightFacility struct {
    ID         uint64 // flight_facilities.id
    FlightID   uint64 // flight_facilities.flight_id
    FacilityID uint64 // flight_facilities.facility_id
    PriceCents uint32 // flight_facilities.price_cents
}

// TicketFacility attaches a flight facility to a ticket with a
// quantity, e.g. two luggage items on one ticket.
//
// Fields:
//  ID               – primary key identifier.
//  TicketID         – ticket the facility belongs to.
//  FlightFacilityID – priced facility that was selected.
//  Count            – number of units (always positive).
type TicketFacility struct {
    ID               uint64 // ticket_facilities.id
    TicketID         uint64 // ticket_facilities.ticket_id
    FlightFacilityID uint64 // ticket_facilities.flight_facility_id
    Count            uint32 // ticket_facilities.count
}
