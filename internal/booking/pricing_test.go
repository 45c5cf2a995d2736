package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/flight-ticket-booking/internal/model"
)

var testFares = FareTable{
	EconomyCents:       150_00,
	BusinessCents:      400_00,
	SeatSurchargeCents: 10_00,
}

func TestFareFor(t *testing.T) {
	assert.Equal(t, uint64(150_00), testFares.FareFor(model.SeatClassEconomy))
	assert.Equal(t, uint64(400_00), testFares.FareFor(model.SeatClassBusiness))
	assert.Equal(t, uint64(0), testFares.FareFor(model.SeatClass("first")))
}

func TestTicketPriceBare(t *testing.T) {
	// No facilities: class fare plus the seat surcharge.
	got := TicketPrice(testFares, model.SeatClassEconomy, nil)
	assert.Equal(t, uint64(160_00), got)
}

func TestTicketPriceWithFacilities(t *testing.T) {
	facilities := []FacilityLine{
		{PriceCents: 5_00, Count: 2},  // two meals
		{PriceCents: 12_50, Count: 1}, // extra baggage
	}
	got := TicketPrice(testFares, model.SeatClassBusiness, facilities)
	assert.Equal(t, uint64(400_00+10_00+10_00+12_50), got)
}

func TestOrderPrice(t *testing.T) {
	lines := []TicketLine{
		{Class: model.SeatClassEconomy},
		{Class: model.SeatClassBusiness, Facilities: []FacilityLine{{PriceCents: 3_00, Count: 3}}},
	}
	got := OrderPrice(testFares, lines)
	assert.Equal(t, uint64(160_00+410_00+9_00), got)
}

func TestOrderPriceEmpty(t *testing.T) {
	assert.Equal(t, uint64(0), OrderPrice(testFares, nil))
}
