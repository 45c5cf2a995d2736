package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatClassValid(t *testing.T) {
	assert.True(t, SeatClassEconomy.Valid())
	assert.True(t, SeatClassBusiness.Valid())
	assert.False(t, SeatClass("first").Valid())
	assert.False(t, SeatClass("").Valid())
}

func TestAirplaneSeatsFor(t *testing.T) {
	a := Airplane{EconomySeats: 40, BusinessSeats: 12}
	assert.Equal(t, uint32(40), a.SeatsFor(SeatClassEconomy))
	assert.Equal(t, uint32(12), a.SeatsFor(SeatClassBusiness))
	assert.Equal(t, uint32(0), a.SeatsFor(SeatClass("cargo")))
}

func TestFlightAvailableFor(t *testing.T) {
	f := Flight{AvailableEconomySeats: 3, AvailableBusinessSeats: 0}
	assert.Equal(t, uint32(3), f.AvailableFor(SeatClassEconomy))
	assert.Equal(t, uint32(0), f.AvailableFor(SeatClassBusiness))
}
