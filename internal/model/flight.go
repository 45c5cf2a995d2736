package model

import "time"

// Flight represents a scheduled flight in the `flights` table.  The
// two availability counters are initialized from the owning airplane
// when the flight is created and are decremented for every booked
// ticket.  They never go negative: all mutations happen through
// conditional UPDATE statements in the repository layer.
//
// Fields:
//  ID                     – primary key identifier.
//  AirplaneID             – airplane operating this flight.
//  PlaceOfDeparture       – departure city or airport.
//  PlaceOfArrival         – arrival city or airport.
//  DepartsAt              – scheduled departure time (UTC).
//  ArrivesAt              – scheduled arrival time (UTC).
//  AvailableEconomySeats  – economy seats not currently booked.
//  AvailableBusinessSeats – business seats not currently booked.
//  CreatedAt              – timestamp of creation.
//  UpdatedAt              – timestamp of last update.
type Flight struct {
    ID                     uint64    // flights.id
    AirplaneID             uint64    // flights.airplane_id
    PlaceOfDeparture       string    // flights.place_of_departure
    PlaceOfArrival         string    // flights.place_of_arrival
    DepartsAt              time.Time // flights.departs_at
    ArrivesAt              time.Time // flights.arrives_at
    AvailableEconomySeats  uint32    // flights.available_economy_seats
    AvailableBusinessSeats uint32    // flights.available_business_seats
    CreatedAt              time.Time // flights.created_at
    UpdatedAt              time.Time // flights.updated_at
}

// AvailableFor returns the remaining seat counter for the given class.
func (f Flight) AvailableFor(class SeatClass) uint32 {
    switch class {
    case SeatClassEconomy:
        return f.AvailableEconomySeats
    case SeatClassBusiness:
        return f.AvailableBusinessSeats
    }
    return 0
}
