package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "fmt"      // validation error messages
    "net/http" // HTTP status codes
    "strings"  // facility name normalization
    "time"     // flight schedule parsing

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/flight-ticket-booking/internal/model"
    "github.com/iliyamo/flight-ticket-booking/internal/repository"
)

// AdminHandler covers the fleet and schedule management surface:
// registering airplanes, scheduling flights and offering priced
// facilities on them.  All routes sit behind the ADMIN role check.
type AdminHandler struct {
    AirplaneRepo *repository.AirplaneRepo
    FlightRepo   *repository.FlightRepo
    FacilityRepo *repository.FacilityRepo
}

// NewAdminHandler constructs an AdminHandler; all dependencies must be non-nil.
func NewAdminHandler(a *repository.AirplaneRepo, f *repository.FlightRepo, fac *repository.FacilityRepo) *AdminHandler {
    if a == nil || f == nil || fac == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{AirplaneRepo: a, FlightRepo: f, FacilityRepo: fac}
}

// CreateAirplane handles POST /v1/admin/airplanes.  Cabin sizes are
// bounded to the fleet the airline operates; values outside the
// bounds are data entry mistakes and rejected.
func (h *AdminHandler) CreateAirplane(c echo.Context) error {
    var body struct {
        EconomySeats  uint32 `json:"economy_seats"`
        BusinessSeats uint32 `json:"business_seats"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.EconomySeats < model.MinEconomySeats || body.EconomySeats > model.MaxEconomySeats {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error": fmt.Sprintf("economy seats must be between %d and %d", model.MinEconomySeats, model.MaxEconomySeats),
        })
    }
    if body.BusinessSeats < model.MinBusinessSeats || body.BusinessSeats > model.MaxBusinessSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error": fmt.Sprintf("business seats must be between %d and %d", model.MinBusinessSeats, model.MaxBusinessSeats),
        })
    }
    plane := &model.Airplane{EconomySeats: body.EconomySeats, BusinessSeats: body.BusinessSeats}
    if err := h.AirplaneRepo.Create(c.Request().Context(), plane); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create airplane"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":             plane.ID,
        "economy_seats":  plane.EconomySeats,
        "business_seats": plane.BusinessSeats,
    })
}

// ListAirplanes handles GET /v1/admin/airplanes.
func (h *AdminHandler) ListAirplanes(c echo.Context) error {
    planes, err := h.AirplaneRepo.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airplanes"})
    }
    items := make([]echo.Map, 0, len(planes))
    for _, p := range planes {
        items = append(items, echo.Map{
            "id":             p.ID,
            "economy_seats":  p.EconomySeats,
            "business_seats": p.BusinessSeats,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeleteAirplane handles DELETE /v1/admin/airplanes/:id.  Airplanes
// referenced by flights cannot be removed.
func (h *AdminHandler) DeleteAirplane(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid airplane id"})
    }
    if err := h.AirplaneRepo.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrAirplaneNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "airplane not found"})
        }
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "airplane has scheduled flights"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete airplane"})
    }
    return c.NoContent(http.StatusNoContent)
}

// CreateFlight handles POST /v1/admin/flights.  The availability
// counters are seeded from the airplane inside the repository, so a
// freshly created flight always starts with a full cabin.
func (h *AdminHandler) CreateFlight(c echo.Context) error {
    var body struct {
        AirplaneID       uint64 `json:"airplane_id"`
        PlaceOfDeparture string `json:"place_of_departure"`
        PlaceOfArrival   string `json:"place_of_arrival"`
        DepartsAt        string `json:"departs_at"` // RFC3339
        ArrivesAt        string `json:"arrives_at"` // RFC3339
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    from := strings.TrimSpace(body.PlaceOfDeparture)
    to := strings.TrimSpace(body.PlaceOfArrival)
    if body.AirplaneID == 0 || from == "" || to == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "airplane_id, place_of_departure and place_of_arrival are required"})
    }
    departs, err := time.Parse(time.RFC3339, body.DepartsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departs_at, want RFC3339"})
    }
    arrives, err := time.Parse(time.RFC3339, body.ArrivesAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrives_at, want RFC3339"})
    }
    if !arrives.After(departs) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
    }
    flight := &model.Flight{
        AirplaneID:       body.AirplaneID,
        PlaceOfDeparture: from,
        PlaceOfArrival:   to,
        DepartsAt:        departs.UTC(),
        ArrivesAt:        arrives.UTC(),
    }
    if err := h.FlightRepo.Create(c.Request().Context(), flight); err != nil {
        if errors.Is(err, repository.ErrAirplaneNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "airplane not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create flight"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": toFlightView(*flight)})
}

// AttachFacility handles POST /v1/admin/flights/:id/facilities.  The
// facility names form a small vocabulary (breakfast, lunch, luggage
// and the like); an unknown name creates the facility on first use.
func (h *AdminHandler) AttachFacility(c echo.Context) error {
    flightID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    var body struct {
        Name       string `json:"name"`
        PriceCents uint32 `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    name := strings.ToLower(strings.TrimSpace(body.Name))
    if name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    ctx := c.Request().Context()
    if _, err := h.FlightRepo.GetByID(ctx, flightID); err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
    }
    facility, err := h.FacilityRepo.GetOrCreateByName(ctx, name)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facility"})
    }
    id, err := h.FacilityRepo.AttachToFlight(ctx, flightID, facility.ID, body.PriceCents)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to attach facility"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":          id,
        "flight_id":   flightID,
        "name":        facility.Name,
        "price_cents": body.PriceCents,
    })
}
