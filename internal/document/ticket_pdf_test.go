package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBoardingPassesEmpty(t *testing.T) {
	_, err := RenderBoardingPasses(nil)
	assert.Error(t, err)
}

func TestRenderBoardingPasses(t *testing.T) {
	passes := []BoardingPass{
		{
			TicketID:   10,
			OrderRef:   "DH0000000001",
			From:       "Kyiv",
			To:         "Lviv",
			DepartsAt:  time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC),
			SeatClass:  "economy",
			SeatNumber: 12,
			PriceCents: 320_00,
		},
		{
			TicketID:   11,
			OrderRef:   "DH0000000001",
			From:       "Kyiv",
			To:         "Lviv",
			DepartsAt:  time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC),
			SeatClass:  "business",
			SeatNumber: 3,
			PriceCents: 320_00,
		},
	}

	out, err := RenderBoardingPasses(passes)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// PDF files start with the %PDF magic.
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestTicketReference(t *testing.T) {
	ref := ticketReference(BoardingPass{TicketID: 7, OrderRef: "DH1234567890"})
	assert.Equal(t, "DH1234567890-T7", ref)
}
