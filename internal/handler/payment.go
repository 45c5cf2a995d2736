package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "log"      // callback outcomes are logged for reconciliation
    "net/http" // HTTP status codes
    "strconv"  // flight ids formatted into the event payload
    "time"     // event timestamps and callback response time

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/flight-ticket-booking/internal/model"
    "github.com/iliyamo/flight-ticket-booking/internal/payment"
    q "github.com/iliyamo/flight-ticket-booking/internal/queue"
    "github.com/iliyamo/flight-ticket-booking/internal/repository"
    publisher "github.com/iliyamo/flight-ticket-booking/internal/service"
)

// PaymentHandler receives the gateway's payment notifications.  The
// callback route is unauthenticated by design; the HMAC signature is
// the only trust anchor, so an invalid signature is rejected before
// any database work.
type PaymentHandler struct {
    OrderRepo  *repository.OrderRepo
    TicketRepo *repository.TicketRepo
    Gateway    *payment.Client
}

// NewPaymentHandler constructs a PaymentHandler; all dependencies must be non-nil.
func NewPaymentHandler(o *repository.OrderRepo, t *repository.TicketRepo, gw *payment.Client) *PaymentHandler {
    if o == nil || t == nil || gw == nil {
        panic("nil dependency passed to NewPaymentHandler")
    }
    return &PaymentHandler{OrderRepo: o, TicketRepo: t, Gateway: gw}
}

// Callback handles POST /v1/payments/callback.  An approved status
// settles the order as 'paid' and emits an order.paid event to the
// broker (best-effort; a broker outage never fails the callback).
// Any other status marks the order 'payment_failed' so the customer
// can retry checkout.
func (h *PaymentHandler) Callback(c echo.Context) error {
    var cb payment.Callback
    if err := c.Bind(&cb); err != nil || cb.OrderReference == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid callback payload"})
    }
    if !h.Gateway.VerifyCallback(cb) {
        log.Printf("payment: rejected callback with bad signature for %s", cb.OrderReference)
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
    }

    ctx := c.Request().Context()
    order, err := h.OrderRepo.GetByPaymentRef(ctx, cb.OrderReference)
    if err != nil {
        if errors.Is(err, repository.ErrOrderNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown order reference"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
    }

    status := model.OrderStatusPaymentFailed
    if cb.Approved() {
        status = model.OrderStatusPaid
    }
    if err := h.OrderRepo.SetStatus(ctx, order.ID, status); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
    }
    log.Printf("payment: order %d -> %s (gateway status %q)", order.ID, status, cb.TransactionStatus)

    if status == model.OrderStatusPaid {
        h.publishPaid(c, order, cb.OrderReference)
    }

    // Acknowledge in the gateway's expected shape.
    return c.JSON(http.StatusOK, echo.Map{
        "orderReference": cb.OrderReference,
        "status":         "accept",
        "time":           time.Now().UTC().Unix(),
    })
}

// publishPaid emits the order.paid event.  Failures are logged and
// swallowed: the payment is settled either way.
func (h *PaymentHandler) publishPaid(c echo.Context, order *model.Order, ref string) {
    ctx := c.Request().Context()
    tickets, err := h.TicketRepo.ListByOrder(ctx, order.ID)
    if err != nil {
        log.Printf("payment: failed to load tickets for event: %v", err)
        return
    }
    flights := make([]string, 0, len(tickets))
    seen := make(map[uint64]struct{})
    for _, t := range tickets {
        if _, ok := seen[t.FlightID]; !ok {
            seen[t.FlightID] = struct{}{}
            flights = append(flights, "flight-"+strconv.FormatUint(t.FlightID, 10))
        }
    }
    ev := q.OrderPaidEvent{
        OrderID:     order.ID,
        UserID:      order.UserID,
        PaymentRef:  ref,
        PriceCents:  order.PriceCents,
        TicketCount: len(tickets),
        Flights:     flights,
        PaidAt:      time.Now().UTC().Format(time.RFC3339),
    }
    if err := publisher.PublishOrderPaid(ctx, ev); err != nil {
        log.Printf("payment: publish order.paid failed for order %d: %v", order.ID, err)
    }
}
