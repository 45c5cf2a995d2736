// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPaidEvent is published when the payment gateway confirms an
// order. It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type OrderPaidEvent struct {
    OrderID     uint64   `json:"order_id"`
    UserID      uint64   `json:"user_id"`
    PaymentRef  string   `json:"payment_ref"`
    PriceCents  uint64   `json:"price_cents"`
    TicketCount int      `json:"ticket_count"`
    Flights     []string `json:"flights"`
    PaidAt      string   `json:"paid_at"`
}
