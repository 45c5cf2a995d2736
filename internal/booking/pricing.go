package booking

import (
    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// FareTable carries the configured fares used at checkout.  All
// amounts are in cents, following the money convention used across
// the repositories.
type FareTable struct {
    EconomyCents       uint64 // base fare for an economy seat
    BusinessCents      uint64 // base fare for a business seat
    SeatSurchargeCents uint64 // flat surcharge for a chosen seat number
}

// FareFor returns the base fare for a seat class.  Unknown classes
// price at zero; callers validate the class before pricing.
func (t FareTable) FareFor(class model.SeatClass) uint64 {
    switch class {
    case model.SeatClassEconomy:
        return t.EconomyCents
    case model.SeatClassBusiness:
        return t.BusinessCents
    }
    return 0
}

// FacilityLine is one selected facility on a ticket: its per-unit
// price and how many units were chosen.
type FacilityLine struct {
    PriceCents uint32
    Count      uint32
}

// TicketPrice computes the price of a single ticket: class fare plus
// the seat-number surcharge plus every selected facility multiplied
// by its count.
func TicketPrice(t FareTable, class model.SeatClass, facilities []FacilityLine) uint64 {
    total := t.FareFor(class) + t.SeatSurchargeCents
    for _, f := range facilities {
        total += uint64(f.PriceCents) * uint64(f.Count)
    }
    return total
}

// TicketLine describes one ticket of an order for pricing purposes.
type TicketLine struct {
    Class      model.SeatClass
    Facilities []FacilityLine
}

// OrderPrice sums the per-ticket prices of an order.
func OrderPrice(t FareTable, lines []TicketLine) uint64 {
    var total uint64
    for _, l := range lines {
        total += TicketPrice(t, l.Class, l.Facilities)
    }
    return total
}
