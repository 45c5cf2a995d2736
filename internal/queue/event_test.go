package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPaidEventJSON(t *testing.T) {
	ev := OrderPaidEvent{
		OrderID:     9,
		UserID:      4,
		PaymentRef:  "DH0000000042",
		PriceCents:  32000,
		TicketCount: 2,
		Flights:     []string{"flight-1", "flight-3"},
		PaidAt:      "2026-09-01 10:00:00",
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	// Consumers in other services parse by field name; the wire names
	// are part of the contract.
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, float64(9), m["order_id"])
	assert.Equal(t, "DH0000000042", m["payment_ref"])
	assert.Equal(t, float64(32000), m["price_cents"])

	var back OrderPaidEvent
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ev, back)
}
