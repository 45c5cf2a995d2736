package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/flight-ticket-booking/internal/model"
)

func TestFreeSeatsAllFree(t *testing.T) {
	free := FreeSeats(5, nil)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, free)
}

func TestFreeSeatsSkipsTaken(t *testing.T) {
	free := FreeSeats(6, []uint32{2, 5})
	assert.Equal(t, []uint32{1, 3, 4, 6}, free)
}

func TestFreeSeatsFullCabin(t *testing.T) {
	free := FreeSeats(3, []uint32{3, 1, 2})
	assert.NotNil(t, free)
	assert.Empty(t, free)
}

func TestFreeSeatsIgnoresOutOfRangeTaken(t *testing.T) {
	// Stale seat numbers above the capacity must not panic or leak
	// into the result.
	free := FreeSeats(2, []uint32{1, 99})
	assert.Equal(t, []uint32{2}, free)
}

func TestValidateSeatClass(t *testing.T) {
	assert.NoError(t, ValidateSeatClass(model.SeatClassEconomy))
	assert.NoError(t, ValidateSeatClass(model.SeatClassBusiness))

	err := ValidateSeatClass(model.SeatClass("first"))
	assert.Error(t, err)
	_, ok := AsValidation(err)
	assert.True(t, ok)
}

func TestValidateCreateTicket(t *testing.T) {
	assert.NoError(t, ValidateCreateTicket(model.SeatClassEconomy, 1))

	err := ValidateCreateTicket(model.SeatClassEconomy, 0)
	assert.Error(t, err)
	ve, ok := AsValidation(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Msg, "no available economy seats")

	err = ValidateCreateTicket(model.SeatClass("cargo"), 10)
	assert.Error(t, err)
}

func TestValidateSeatNumber(t *testing.T) {
	taken := []uint32{3, 7}

	assert.NoError(t, ValidateSeatNumber(model.SeatClassBusiness, 1, 10, taken))
	assert.NoError(t, ValidateSeatNumber(model.SeatClassBusiness, 10, 10, taken))

	err := ValidateSeatNumber(model.SeatClassBusiness, 0, 10, taken)
	assert.Error(t, err)

	err = ValidateSeatNumber(model.SeatClassBusiness, 11, 10, taken)
	assert.Error(t, err)
	ve, ok := AsValidation(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Msg, "out of range")

	err = ValidateSeatNumber(model.SeatClassBusiness, 7, 10, taken)
	assert.Error(t, err)
	ve, ok = AsValidation(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Msg, "already taken")
}

func TestNotices(t *testing.T) {
	msg := ReclamationNotice(model.SeatClassEconomy, "Kyiv", "Lviv")
	assert.Equal(t, "Your economy ticket for the flight Kyiv - Lviv was released to another customer.", msg)

	msg = ExpiryNotice(model.SeatClassBusiness, "Kyiv", "Odesa")
	assert.Equal(t, "Your business ticket for the flight Kyiv - Odesa expired and was released.", msg)
}
