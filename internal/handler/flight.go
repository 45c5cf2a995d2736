package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "net/http" // HTTP status codes
    "time"     // parsing the date filter

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/flight-ticket-booking/internal/booking"    // seat math
    "github.com/iliyamo/flight-ticket-booking/internal/model"      // domain types
    "github.com/iliyamo/flight-ticket-booking/internal/repository" // repository layer
)

// FlightHandler serves the public, unauthenticated flight surface:
// searching flights, inspecting a flight's remaining seats and the
// facilities offered on it.  These routes sit behind the response
// cache middleware since they are read-only and hit by every visitor.
type FlightHandler struct {
    FlightRepo   *repository.FlightRepo
    AirplaneRepo *repository.AirplaneRepo
    TicketRepo   *repository.TicketRepo
    FacilityRepo *repository.FacilityRepo
}

// NewFlightHandler constructs a FlightHandler; all dependencies must be non-nil.
func NewFlightHandler(f *repository.FlightRepo, a *repository.AirplaneRepo, t *repository.TicketRepo, fac *repository.FacilityRepo) *FlightHandler {
    if f == nil || a == nil || t == nil || fac == nil {
        panic("nil repository passed to NewFlightHandler")
    }
    return &FlightHandler{FlightRepo: f, AirplaneRepo: a, TicketRepo: t, FacilityRepo: fac}
}

// flightView is the public JSON representation of a flight.
type flightView struct {
    ID                     uint64 `json:"id"`
    AirplaneID             uint64 `json:"airplane_id"`
    PlaceOfDeparture       string `json:"place_of_departure"`
    PlaceOfArrival         string `json:"place_of_arrival"`
    DepartsAt              string `json:"departs_at"`
    ArrivesAt              string `json:"arrives_at"`
    AvailableEconomySeats  uint32 `json:"available_economy_seats"`
    AvailableBusinessSeats uint32 `json:"available_business_seats"`
}

func toFlightView(f model.Flight) flightView {
    return flightView{
        ID:                     f.ID,
        AirplaneID:             f.AirplaneID,
        PlaceOfDeparture:       f.PlaceOfDeparture,
        PlaceOfArrival:         f.PlaceOfArrival,
        DepartsAt:              f.DepartsAt.UTC().Format(time.RFC3339),
        ArrivesAt:              f.ArrivesAt.UTC().Format(time.RFC3339),
        AvailableEconomySeats:  f.AvailableEconomySeats,
        AvailableBusinessSeats: f.AvailableBusinessSeats,
    }
}

// Search handles GET /v1/flights.  Optional query parameters `from`
// and `to` match the departure/arrival place as case-insensitive
// substrings; `date` (YYYY-MM-DD) matches the departure day.
func (h *FlightHandler) Search(c echo.Context) error {
    var day *time.Time
    if raw := c.QueryParam("date"); raw != "" {
        d, err := time.Parse("2006-01-02", raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
        }
        day = &d
    }
    flights, err := h.FlightRepo.Search(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"), day)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search flights"})
    }
    items := make([]flightView, 0, len(flights))
    for _, f := range flights {
        items = append(items, toFlightView(f))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/flights/:id and returns a single flight.
func (h *FlightHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    f, err := h.FlightRepo.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toFlightView(*f)})
}

// FreeSeats handles GET /v1/flights/:id/free-seats?class=economy.
// It returns every seat number of the class not yet assigned to a
// ticket.  The range always spans the airplane's full cabin for the
// class; tickets without a chosen seat reduce the availability
// counter but not this list.
func (h *FlightHandler) FreeSeats(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    class := model.SeatClass(c.QueryParam("class"))
    if err := booking.ValidateSeatClass(class); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    ctx := c.Request().Context()
    f, err := h.FlightRepo.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
    }
    plane, err := h.AirplaneRepo.GetByID(ctx, f.AirplaneID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airplane"})
    }
    taken, err := h.TicketRepo.TakenSeatNumbers(ctx, f.ID, class)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load taken seats"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "flight_id":  f.ID,
        "class":      class,
        "free_seats": booking.FreeSeats(plane.SeatsFor(class), taken),
    })
}

// Facilities handles GET /v1/flights/:id/facilities and lists the
// priced add-ons offered on the flight.
func (h *FlightHandler) Facilities(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    ctx := c.Request().Context()
    if _, err := h.FlightRepo.GetByID(ctx, id); err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
    }
    items, err := h.FacilityRepo.ListByFlight(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
