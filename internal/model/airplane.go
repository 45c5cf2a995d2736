package model

import "time"

// Seat capacity bounds enforced when an airplane is registered.  The
// limits mirror the fleet the airline actually operates; anything
// outside them is a data entry mistake.
const (
    MinEconomySeats  = 20
    MaxEconomySeats  = 60
    MinBusinessSeats = 6
    MaxBusinessSeats = 25
)

// Airplane describes a physical aircraft and its cabin layout.  An
// airplane is immutable once a flight references it: the per-class
// seat counts seed every flight's availability counters and define
// the valid seat-number range for tickets.
//
// Fields:
//  ID            – primary key identifier.
//  EconomySeats  – number of economy-class seats (20–60).
//  BusinessSeats – number of business-class seats (6–25).
//  CreatedAt     – timestamp of creation.
type Airplane struct {
    ID            uint64    // airplanes.id
    EconomySeats  uint32    // airplanes.economy_seats
    BusinessSeats uint32    // airplanes.business_seats
    CreatedAt     time.Time // airplanes.created_at
}

// SeatsFor returns the airplane's seat count for the given class.
// Unknown classes yield zero.
func (a Airplane) SeatsFor(class SeatClass) uint32 {
    switch class {
    case SeatClassEconomy:
        return a.EconomySeats
    case SeatClassBusiness:
        return a.BusinessSeats
    }
    return 0
}
