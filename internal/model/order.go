package model

import "time"

// OrderStatus tracks an order from creation to settlement.
//
//  new             – created from basket tickets, not yet checked out.
//  pending_payment – checkout succeeded, invoice issued, awaiting the
//                    payment gateway callback.
//  paid            – gateway confirmed the payment.
//  payment_failed  – invoice creation failed or the gateway declined;
//                    checkout may be retried.
type OrderStatus string

const (
    OrderStatusNew            OrderStatus = "new"
    OrderStatusPendingPayment OrderStatus = "pending_payment"
    OrderStatusPaid           OrderStatus = "paid"
    OrderStatusPaymentFailed  OrderStatus = "payment_failed"
)

// Order groups one or more tickets purchased together, as stored in
// the `orders` table.  PriceCents is recomputed from the constituent
// tickets (class fare, seat surcharge and facilities) during the
// checkout transaction.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – customer who owns the order.
//  Status     – settlement status, see OrderStatus.
//  PriceCents – total price in cents, set at checkout.
//  PaymentRef – gateway order reference (null until an invoice exists).
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Order struct {
    ID         uint64      // orders.id
    UserID     uint64      // orders.user_id
    Status     OrderStatus // orders.status
    PriceCents uint64      // orders.price_cents
    PaymentRef *string     // orders.payment_ref (nullable)
    CreatedAt  time.Time   // orders.created_at
    UpdatedAt  time.Time   // orders.updated_at
}
