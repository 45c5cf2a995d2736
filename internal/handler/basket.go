package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "log"      // inconsistent-state defects are logged before the 500
    "net/http" // HTTP status codes
    "strings"  // splitting drained basket messages

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/flight-ticket-booking/internal/booking"    // validation and notices
    "github.com/iliyamo/flight-ticket-booking/internal/model"      // domain types
    "github.com/iliyamo/flight-ticket-booking/internal/repository" // repository layer
)

// BasketHandler owns the customer basket flows: booking a ticket into
// the basket, viewing the basket (which also delivers queued notices)
// and removing a ticket again.  Booking and removal each run in a
// single transaction so the flight's availability counter and the
// ticket rows always move together.
type BasketHandler struct {
    FlightRepo   *repository.FlightRepo
    TicketRepo   *repository.TicketRepo
    BasketRepo   *repository.BasketRepo
    AirplaneRepo *repository.AirplaneRepo
}

// NewBasketHandler constructs a BasketHandler; all dependencies must be non-nil.
func NewBasketHandler(f *repository.FlightRepo, t *repository.TicketRepo, b *repository.BasketRepo, a *repository.AirplaneRepo) *BasketHandler {
    if f == nil || t == nil || b == nil || a == nil {
        panic("nil repository passed to NewBasketHandler")
    }
    return &BasketHandler{FlightRepo: f, TicketRepo: t, BasketRepo: b, AirplaneRepo: a}
}

// ticketView is the JSON representation of a ticket in basket and
// order responses.
type ticketView struct {
    ID         uint64            `json:"id"`
    FlightID   uint64            `json:"flight_id"`
    OrderID    *uint64           `json:"order_id,omitempty"`
    SeatClass  model.SeatClass   `json:"seat_class"`
    SeatNumber *uint32           `json:"seat_number,omitempty"`
    Status     model.TicketStatus `json:"status"`
}

func toTicketView(t model.Ticket) ticketView {
    return ticketView{
        ID:         t.ID,
        FlightID:   t.FlightID,
        OrderID:    t.OrderID,
        SeatClass:  t.SeatClass,
        SeatNumber: t.SeatNumber,
        Status:     t.Status,
    }
}

// AddTicket handles POST /v1/basket/tickets.  The body names a flight
// and a seat class; on success a new 'booked' ticket lands in the
// caller's basket and one seat is taken from the flight's counter.
//
// When an 'available' placeholder exists for the same flight and
// class, the oldest one is reclaimed first: it is deleted and a
// notice is queued on its owner's basket.  A placeholder without an
// owning basket aborts the whole transaction; that state means the
// bookkeeping is broken and must not be papered over.
//
// Two requests racing for the last seat are decided by the
// conditional counter decrement: the loser gets a validation error.
func (h *BasketHandler) AddTicket(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        FlightID  uint64          `json:"flight_id"`
        SeatClass model.SeatClass `json:"seat_class"`
    }
    if err := c.Bind(&body); err != nil || body.FlightID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_id and seat_class are required"})
    }
    if err := booking.ValidateSeatClass(body.SeatClass); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
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

    flight, err := h.FlightRepo.GetByIDTx(ctx, tx, body.FlightID)
    if err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
    }

    // Reclaim the oldest released placeholder for this flight+class,
    // if any.  Its seat was already returned to the counter when it
    // was released, so only the row and a basket notice move here.
    placeholder, err := h.TicketRepo.OldestPlaceholderTx(ctx, tx, flight.ID, body.SeatClass)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check released tickets"})
    }
    if placeholder != nil {
        owner, err := h.BasketRepo.GetByTicketTx(ctx, tx, placeholder.ID)
        if err != nil {
            if errors.Is(err, repository.ErrBasketNotFound) {
                log.Printf("basket: %v: placeholder ticket %d has no basket", booking.ErrInconsistentState, placeholder.ID)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inconsistent booking state"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ticket basket"})
        }
        notice := booking.ReclamationNotice(placeholder.SeatClass, flight.PlaceOfDeparture, flight.PlaceOfArrival)
        if err := h.BasketRepo.AppendMessageTx(ctx, tx, owner.ID, notice); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to queue notice"})
        }
        // Cascades remove the basket link and facility selections.
        if err := h.TicketRepo.DeleteTx(ctx, tx, placeholder.ID); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reclaim ticket"})
        }
    }

    if err := h.FlightRepo.DecrementAvailableTx(ctx, tx, flight.ID, body.SeatClass); err != nil {
        if errors.Is(err, repository.ErrSoldOut) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.ValidateCreateTicket(body.SeatClass, 0).Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reserve seat"})
    }

    ticket := &model.Ticket{
        FlightID:  flight.ID,
        SeatClass: body.SeatClass,
        Status:    model.TicketStatusBooked,
    }
    if err := h.TicketRepo.CreateTx(ctx, tx, ticket); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket"})
    }

    basket, err := h.BasketRepo.GetOrCreateByUserTx(ctx, tx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load basket"})
    }
    if err := h.BasketRepo.AddTicketTx(ctx, tx, basket.ID, ticket.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add ticket to basket"})
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.JSON(http.StatusCreated, echo.Map{"ticket": toTicketView(*ticket)})
}

// View handles GET /v1/basket.  It returns the basket's tickets and
// drains any queued notices so each is delivered exactly once.  A
// user who never booked anything simply sees an empty basket.
func (h *BasketHandler) View(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    basket, err := h.BasketRepo.GetByUser(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrBasketNotFound) {
            return c.JSON(http.StatusOK, echo.Map{"items": []ticketView{}, "messages": []string{}})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load basket"})
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
    // Drain and list in the same transaction: if the listing fails the
    // rollback restores the notices, keeping them deliverable.
    raw, err := h.BasketRepo.DrainMessagesTx(ctx, tx, basket.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read notices"})
    }
    tickets, err := h.BasketRepo.ListTicketsTx(ctx, tx, basket.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    messages := []string{}
    if raw != "" {
        messages = strings.Split(raw, "\n")
    }
    items := make([]ticketView, 0, len(tickets))
    for _, t := range tickets {
        items = append(items, toTicketView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "messages": messages})
}

// RemoveTicket handles DELETE /v1/basket/tickets/:id.  The ticket is
// unlinked, deleted and its seat returned to the flight's counter,
// all in one transaction.
func (h *BasketHandler) RemoveTicket(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ticketID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    ctx := c.Request().Context()
    basket, err := h.BasketRepo.GetByUser(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrBasketNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found in basket"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load basket"})
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

    ticket, err := h.TicketRepo.GetByIDTx(ctx, tx, ticketID)
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ticket"})
    }
    if err := h.BasketRepo.RemoveTicketTx(ctx, tx, basket.ID, ticket.ID); err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found in basket"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove ticket"})
    }
    // Only a 'booked' ticket still counts against the flight's
    // inventory; a released placeholder was already returned.
    if ticket.Status == model.TicketStatusBooked {
        if err := h.FlightRepo.IncrementAvailableTx(ctx, tx, ticket.FlightID, ticket.SeatClass); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release seat"})
        }
    }
    if err := h.TicketRepo.DeleteTx(ctx, tx, ticket.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete ticket"})
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.NoContent(http.StatusNoContent)
}
