package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "fmt"      // messages for validation errors
    "net/http" // HTTP status codes
    "time"     // response timestamp formatting

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/flight-ticket-booking/internal/booking"    // validation and pricing
    "github.com/iliyamo/flight-ticket-booking/internal/document"   // boarding pass PDF
    "github.com/iliyamo/flight-ticket-booking/internal/model"      // domain types
    "github.com/iliyamo/flight-ticket-booking/internal/payment"    // gateway adapter
    "github.com/iliyamo/flight-ticket-booking/internal/repository" // repository layer
)

// OrderHandler owns the order lifecycle: creating an order from
// basket tickets, customizing each ticket's seat and facilities,
// the checkout transaction, and listing/inspecting orders.  Checkout
// validates and prices every ticket inside one transaction; only
// after it commits is the payment gateway contacted, so a gateway
// failure can never leave half-priced tickets behind.
type OrderHandler struct {
    OrderRepo    *repository.OrderRepo
    TicketRepo   *repository.TicketRepo
    BasketRepo   *repository.BasketRepo
    FlightRepo   *repository.FlightRepo
    AirplaneRepo *repository.AirplaneRepo
    FacilityRepo *repository.FacilityRepo
    UserRepo     *repository.UserRepo
    Gateway      *payment.Client
    Fares        booking.FareTable
}

// NewOrderHandler constructs an OrderHandler; all dependencies must be non-nil.
func NewOrderHandler(o *repository.OrderRepo, t *repository.TicketRepo, b *repository.BasketRepo,
    f *repository.FlightRepo, a *repository.AirplaneRepo, fac *repository.FacilityRepo,
    u *repository.UserRepo, gw *payment.Client, fares booking.FareTable) *OrderHandler {
    if o == nil || t == nil || b == nil || f == nil || a == nil || fac == nil || u == nil || gw == nil {
        panic("nil dependency passed to NewOrderHandler")
    }
    return &OrderHandler{
        OrderRepo: o, TicketRepo: t, BasketRepo: b,
        FlightRepo: f, AirplaneRepo: a, FacilityRepo: fac,
        UserRepo: u, Gateway: gw, Fares: fares,
    }
}

// orderView is the JSON representation of an order.
type orderView struct {
    ID         uint64            `json:"id"`
    Status     model.OrderStatus `json:"status"`
    PriceCents uint64            `json:"price_cents"`
    PaymentRef *string           `json:"payment_ref,omitempty"`
    CreatedAt  string            `json:"created_at"`
}

func toOrderView(o model.Order) orderView {
    return orderView{
        ID:         o.ID,
        Status:     o.Status,
        PriceCents: o.PriceCents,
        PaymentRef: o.PaymentRef,
        CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// Create handles POST /v1/orders.  The body lists ticket ids that
// must all sit in the caller's basket; they are moved out of the
// basket onto a fresh order in 'new' status.  An empty selection is
// rejected.
func (h *OrderHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        TicketIDs []uint64 `json:"ticket_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    unique := make([]uint64, 0, len(body.TicketIDs))
    seen := make(map[uint64]struct{})
    for _, id := range body.TicketIDs {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            unique = append(unique, id)
        }
    }
    if len(unique) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "an order needs at least one ticket"})
    }

    ctx := c.Request().Context()
    tx, err := h.FlightRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    basket, err := h.BasketRepo.GetOrCreateByUserTx(ctx, tx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load basket"})
    }
    for _, id := range unique {
        in, err := h.BasketRepo.ContainsTicketTx(ctx, tx, basket.ID, id)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check basket"})
        }
        if !in {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("ticket %d is not in your basket", id)})
        }
    }

    order := &model.Order{UserID: userID, Status: model.OrderStatusNew}
    if err := h.OrderRepo.CreateTx(ctx, tx, order); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
    }
    for _, id := range unique {
        if err := h.TicketRepo.AssignToOrderTx(ctx, tx, id, order.ID); err != nil {
            if errors.Is(err, repository.ErrConflict) {
                return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("ticket %d already belongs to an order", id)})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to attach ticket"})
        }
        if err := h.BasketRepo.RemoveTicketTx(ctx, tx, basket.ID, id); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove ticket from basket"})
        }
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.JSON(http.StatusCreated, echo.Map{"order": toOrderView(*order), "ticket_ids": unique})
}

// customizable reports whether an order may still have its tickets
// changed.  Once an invoice is outstanding or paid, seats and
// facilities are frozen.
func customizable(status model.OrderStatus) bool {
    return status == model.OrderStatusNew || status == model.OrderStatusPaymentFailed
}

// CustomizeTicket handles PATCH /v1/orders/:id/tickets/:ticketID.
// The body may carry a seat number, a facility selection, or both.
// Seat numbers are validated against the airplane's cabin size and
// against every other ticket of the same flight and class.
func (h *OrderHandler) CustomizeTicket(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    ticketID, ok := pathID(c, "ticketID")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    var body struct {
        SeatNumber *uint32 `json:"seat_number"`
        Facilities []struct {
            FlightFacilityID uint64 `json:"flight_facility_id"`
            Count            uint32 `json:"count"`
        } `json:"facilities"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.SeatNumber == nil && body.Facilities == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to change"})
    }

    ctx := c.Request().Context()
    tx, err := h.FlightRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := h.OrderRepo.GetByIDForUserTx(ctx, tx, orderID, userID)
    if err != nil {
        return h.orderLookupError(c, err)
    }
    if !customizable(order.Status) {
        return c.JSON(http.StatusConflict, echo.Map{"error": "order can no longer be changed"})
    }
    ticket, err := h.TicketRepo.GetByIDTx(ctx, tx, ticketID)
    if err != nil || ticket.OrderID == nil || *ticket.OrderID != order.ID {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found in order"})
    }

    if body.SeatNumber != nil {
        flight, err := h.FlightRepo.GetByIDTx(ctx, tx, ticket.FlightID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
        }
        plane, err := h.AirplaneRepo.GetByIDTx(ctx, tx, flight.AirplaneID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airplane"})
        }
        taken, err := h.TicketRepo.TakenSeatNumbersTx(ctx, tx, ticket.FlightID, ticket.SeatClass, ticket.ID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load taken seats"})
        }
        if err := booking.ValidateSeatNumber(ticket.SeatClass, *body.SeatNumber, plane.SeatsFor(ticket.SeatClass), taken); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        if err := h.TicketRepo.UpdateSeatNumberTx(ctx, tx, ticket.ID, *body.SeatNumber); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update seat"})
        }
    }

    if body.Facilities != nil {
        selections := make([]model.TicketFacility, 0, len(body.Facilities))
        for _, sel := range body.Facilities {
            if sel.Count == 0 {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "facility count must be positive"})
            }
            if _, err := h.FacilityRepo.GetFlightFacilityTx(ctx, tx, sel.FlightFacilityID, ticket.FlightID); err != nil {
                if errors.Is(err, repository.ErrFacilityNotFound) {
                    return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("facility %d is not offered on this flight", sel.FlightFacilityID)})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facility"})
            }
            selections = append(selections, model.TicketFacility{
                TicketID:         ticket.ID,
                FlightFacilityID: sel.FlightFacilityID,
                Count:            sel.Count,
            })
        }
        if err := h.FacilityRepo.ReplaceTicketSelectionTx(ctx, tx, ticket.ID, selections); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update facilities"})
        }
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.NoContent(http.StatusNoContent)
}

// Checkout handles POST /v1/orders/:id/checkout.  Inside one
// transaction every ticket's seat number is validated (a duplicate
// within the order fails like any other taken seat), the order price
// is recomputed from fares, surcharges and facilities, the tickets
// move to 'checked_out' and the order to 'pending_payment'.  Any
// validation failure rolls everything back.  Only after the commit is
// the gateway invoice created; a gateway failure marks the order
// 'payment_failed' and checkout may be retried.
func (h *OrderHandler) Checkout(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    ctx := c.Request().Context()

    // The invoice needs the customer's email; fetch it before touching
    // the order so nothing can fail between the commit below and the
    // gateway call except the gateway call itself.
    user, err := h.UserRepo.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
    }

    tx, err := h.FlightRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := h.OrderRepo.GetByIDForUserTx(ctx, tx, orderID, userID)
    if err != nil {
        return h.orderLookupError(c, err)
    }
    switch order.Status {
    case model.OrderStatusPaid:
        return c.JSON(http.StatusConflict, echo.Map{"error": "order already paid"})
    case model.OrderStatusPendingPayment:
        return c.JSON(http.StatusConflict, echo.Map{"error": "order awaiting payment"})
    }

    tickets, err := h.TicketRepo.ListByOrderTx(ctx, tx, order.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    if len(tickets) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "order has no tickets"})
    }

    // Validate every seat number.  TakenSeatNumbersTx sees the other
    // tickets of this order too, so a duplicate inside the order
    // fails exactly like a seat taken by someone else.
    planes := make(map[uint64]*model.Airplane)
    for _, t := range tickets {
        if t.SeatNumber == nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("ticket %d has no seat number", t.ID)})
        }
        flight, err := h.FlightRepo.GetByIDTx(ctx, tx, t.FlightID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
        }
        plane, ok := planes[flight.AirplaneID]
        if !ok {
            plane, err = h.AirplaneRepo.GetByIDTx(ctx, tx, flight.AirplaneID)
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airplane"})
            }
            planes[flight.AirplaneID] = plane
        }
        taken, err := h.TicketRepo.TakenSeatNumbersTx(ctx, tx, t.FlightID, t.SeatClass, t.ID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load taken seats"})
        }
        if err := booking.ValidateSeatNumber(t.SeatClass, *t.SeatNumber, plane.SeatsFor(t.SeatClass), taken); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
    }

    ids := make([]uint64, 0, len(tickets))
    for _, t := range tickets {
        ids = append(ids, t.ID)
    }
    facLines, err := h.FacilityRepo.ListByTicketsTx(ctx, tx, ids)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
    }
    lines := make([]booking.TicketLine, 0, len(tickets))
    for _, t := range tickets {
        var fl []booking.FacilityLine
        for _, l := range facLines[t.ID] {
            fl = append(fl, booking.FacilityLine{PriceCents: l.PriceCents, Count: l.Count})
        }
        lines = append(lines, booking.TicketLine{Class: t.SeatClass, Facilities: fl})
    }
    price := booking.OrderPrice(h.Fares, lines)

    // The payment reference is persisted inside the checkout
    // transaction, before the invoice exists, so a callback can always
    // find the order even if this process dies right after the commit.
    ref := payment.NewOrderReference()
    if err := h.OrderRepo.FinalizeTx(ctx, tx, order.ID, price, ref); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finalize order"})
    }
    for _, t := range tickets {
        if err := h.TicketRepo.SetStatusTx(ctx, tx, t.ID, model.TicketStatusCheckedOut); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ticket status"})
        }
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    inv, err := h.Gateway.CreateInvoice(ctx, ref, price, user.Email, len(tickets), order.ID)
    if err != nil {
        _ = h.OrderRepo.SetStatus(ctx, order.ID, model.OrderStatusPaymentFailed)
        return c.JSON(http.StatusBadGateway, echo.Map{
            "error":        "payment gateway unavailable, try checkout again",
            "order_status": model.OrderStatusPaymentFailed,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "order_id":    order.ID,
        "price_cents": price,
        "payment_ref": ref,
        "invoice_url": inv.InvoiceURL,
    })
}

// List handles GET /v1/orders and returns the caller's orders.
func (h *OrderHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orders, err := h.OrderRepo.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
    }
    items := make([]orderView, 0, len(orders))
    for _, o := range orders {
        items = append(items, toOrderView(o))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/orders/:id and returns the order with its tickets.
func (h *OrderHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    ctx := c.Request().Context()
    order, err := h.OrderRepo.GetByIDForUser(ctx, orderID, userID)
    if err != nil {
        return h.orderLookupError(c, err)
    }
    tickets, err := h.TicketRepo.ListByOrder(ctx, order.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    items := make([]ticketView, 0, len(tickets))
    for _, t := range tickets {
        items = append(items, toTicketView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"order": toOrderView(*order), "tickets": items})
}

// BoardingPasses handles GET /v1/orders/:id/boarding-passes.  It
// renders the paid order's tickets as a PDF, one page per ticket.
func (h *OrderHandler) BoardingPasses(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    ctx := c.Request().Context()
    order, err := h.OrderRepo.GetByIDForUser(ctx, orderID, userID)
    if err != nil {
        return h.orderLookupError(c, err)
    }
    if order.Status != model.OrderStatusPaid {
        return c.JSON(http.StatusConflict, echo.Map{"error": "boarding passes are available after payment"})
    }
    tickets, err := h.TicketRepo.ListByOrder(ctx, order.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    ref := ""
    if order.PaymentRef != nil {
        ref = *order.PaymentRef
    }
    passes := make([]document.BoardingPass, 0, len(tickets))
    for _, t := range tickets {
        flight, err := h.FlightRepo.GetByID(ctx, t.FlightID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
        }
        var seat uint32
        if t.SeatNumber != nil {
            seat = *t.SeatNumber
        }
        passes = append(passes, document.BoardingPass{
            TicketID:   t.ID,
            OrderRef:   ref,
            From:       flight.PlaceOfDeparture,
            To:         flight.PlaceOfArrival,
            DepartsAt:  flight.DepartsAt,
            SeatClass:  string(t.SeatClass),
            SeatNumber: seat,
            PriceCents: order.PriceCents,
        })
    }
    pdf, err := document.RenderBoardingPasses(passes)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render boarding passes"})
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=order-%d.pdf", order.ID))
    return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// orderLookupError maps order lookup failures onto HTTP statuses.
func (h *OrderHandler) orderLookupError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrOrderNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
}
