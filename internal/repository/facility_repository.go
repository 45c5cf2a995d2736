package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// FacilityRepo provides data access to facilities, their per-flight
// pricing and the per-ticket selections.
type FacilityRepo struct {
    db *sql.DB
}

// NewFacilityRepo returns a new FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// GetOrCreateByName returns the facility with the given name,
// inserting it first when missing.  Facility names form a small fixed
// vocabulary (breakfast, lunch, luggage), so admin flows reuse rows
// instead of multiplying them.
func (r *FacilityRepo) GetOrCreateByName(ctx context.Context, name string) (*model.Facility, error) {
    var f model.Facility
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name FROM facilities WHERE name = ?`, name).Scan(&f.ID, &f.Name)
    if err == nil {
        return &f, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return nil, err
    }
    res, err := r.db.ExecContext(ctx, `INSERT INTO facilities (name) VALUES (?)`, name)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return &model.Facility{ID: uint64(id), Name: name}, nil
}

// AttachToFlight offers a facility on a flight at the given price and
// returns the new flight_facilities row id.
func (r *FacilityRepo) AttachToFlight(ctx context.Context, flightID, facilityID uint64, priceCents uint32) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO flight_facilities (flight_id, facility_id, price_cents) VALUES (?, ?, ?)`,
        flightID, facilityID, priceCents)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// FlightFacilityView joins a priced flight facility with its name for
// display and selection.
type FlightFacilityView struct {
    ID         uint64 `json:"id"`
    Name       string `json:"name"`
    PriceCents uint32 `json:"price_cents"`
}

// ListByFlight returns the facilities offered on a flight.
func (r *FacilityRepo) ListByFlight(ctx context.Context, flightID uint64) ([]FlightFacilityView, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT ff.id, f.name, ff.price_cents
         FROM flight_facilities ff
         JOIN facilities f ON f.id = ff.facility_id
         WHERE ff.flight_id = ?
         ORDER BY f.name`, flightID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]FlightFacilityView, 0)
    for rows.Next() {
        var v FlightFacilityView
        if err := rows.Scan(&v.ID, &v.Name, &v.PriceCents); err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetFlightFacilityTx loads one priced facility row and verifies it
// belongs to the given flight, inside the caller's transaction.
func (r *FacilityRepo) GetFlightFacilityTx(ctx context.Context, tx *sql.Tx, id, flightID uint64) (*model.FlightFacility, error) {
    var ff model.FlightFacility
    err := tx.QueryRowContext(ctx,
        `SELECT id, flight_id, facility_id, price_cents FROM flight_facilities WHERE id = ?`, id).
        Scan(&ff.ID, &ff.FlightID, &ff.FacilityID, &ff.PriceCents)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrFacilityNotFound
        }
        return nil, err
    }
    if ff.FlightID != flightID {
        return nil, ErrFacilityNotFound
    }
    return &ff, nil
}

// ReplaceTicketSelectionTx replaces the ticket's facility selections
// with the given set inside the caller's transaction.
func (r *FacilityRepo) ReplaceTicketSelectionTx(ctx context.Context, tx *sql.Tx, ticketID uint64, selections []model.TicketFacility) error {
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM ticket_facilities WHERE ticket_id = ?`, ticketID); err != nil {
        return err
    }
    if len(selections) == 0 {
        return nil
    }
    query := `INSERT INTO ticket_facilities (ticket_id, flight_facility_id, count) VALUES `
    args := make([]interface{}, 0, len(selections)*3)
    for i, s := range selections {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?)"
        args = append(args, ticketID, s.FlightFacilityID, s.Count)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// TicketFacilityLine is one selected facility with its current price,
// as needed for checkout pricing and order display.
type TicketFacilityLine struct {
    TicketID   uint64 `json:"-"`
    Name       string `json:"name"`
    PriceCents uint32 `json:"price_cents"`
    Count      uint32 `json:"count"`
}

// ListByTicketsTx returns the facility lines of several tickets in
// one query, grouped by ticket id.
func (r *FacilityRepo) ListByTicketsTx(ctx context.Context, tx *sql.Tx, ticketIDs []uint64) (map[uint64][]TicketFacilityLine, error) {
    out := make(map[uint64][]TicketFacilityLine, len(ticketIDs))
    if len(ticketIDs) == 0 {
        return out, nil
    }
    query := `SELECT tf.ticket_id, f.name, ff.price_cents, tf.count
              FROM ticket_facilities tf
              JOIN flight_facilities ff ON ff.id = tf.flight_facility_id
              JOIN facilities f ON f.id = ff.facility_id
              WHERE tf.ticket_id IN (`
    args := make([]interface{}, 0, len(ticketIDs))
    for i, id := range ticketIDs {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, id)
    }
    query += `) ORDER BY tf.ticket_id, f.name`
    rows, err := tx.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var l TicketFacilityLine
        if err := rows.Scan(&l.TicketID, &l.Name, &l.PriceCents, &l.Count); err != nil {
            return nil, err
        }
        out[l.TicketID] = append(out[l.TicketID], l)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
