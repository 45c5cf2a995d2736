package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// FlightRepo provides data access to the flights table.  Flight
// availability counters are only ever touched through the conditional
// Decrement/Increment methods so that concurrent bookings can never
// drive them negative or above the airplane's capacity.  All
// timestamps are stored in UTC.
type FlightRepo struct {
    db *sql.DB
}

// NewFlightRepo returns a new FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// availabilityColumn maps a seat class onto the counter column it
// owns.  The column name is interpolated into queries, so the mapping
// is the only place where class input meets SQL text.
func availabilityColumn(class model.SeatClass) (string, error) {
    switch class {
    case model.SeatClassEconomy:
        return "available_economy_seats", nil
    case model.SeatClassBusiness:
        return "available_business_seats", nil
    }
    return "", errors.New("unknown seat class")
}

// Create inserts a flight and seeds both availability counters from
// the owning airplane.  This replaces any implicit on-save hook: the
// counters are set exactly once, here, at creation.  On success the
// flight's ID and counters are populated.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
    var econ, bus uint32
    err := r.db.QueryRowContext(ctx,
        `SELECT economy_seats, business_seats FROM airplanes WHERE id = ?`, f.AirplaneID).
        Scan(&econ, &bus)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrAirplaneNotFound
        }
        return err
    }
    const q = `INSERT INTO flights
               (airplane_id, place_of_departure, place_of_arrival, departs_at, arrives_at,
                available_economy_seats, available_business_seats)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        f.AirplaneID, f.PlaceOfDeparture, f.PlaceOfArrival,
        f.DepartsAt.UTC().Format("2006-01-02 15:04:05"), f.ArrivesAt.UTC().Format("2006-01-02 15:04:05"),
        econ, bus)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    f.AvailableEconomySeats = econ
    f.AvailableBusinessSeats = bus
    return nil
}

const flightColumns = `id, airplane_id, place_of_departure, place_of_arrival, departs_at, arrives_at,
                       available_economy_seats, available_business_seats, created_at, updated_at`

func scanFlight(row interface{ Scan(...interface{}) error }) (*model.Flight, error) {
    var f model.Flight
    err := row.Scan(&f.ID, &f.AirplaneID, &f.PlaceOfDeparture, &f.PlaceOfArrival,
        &f.DepartsAt, &f.ArrivesAt, &f.AvailableEconomySeats, &f.AvailableBusinessSeats,
        &f.CreatedAt, &f.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &f, nil
}

// GetByID retrieves a flight by its id.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
    f, err := scanFlight(r.db.QueryRowContext(ctx,
        `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrFlightNotFound
        }
        return nil, err
    }
    return f, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *FlightRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Flight, error) {
    f, err := scanFlight(tx.QueryRowContext(ctx,
        `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrFlightNotFound
        }
        return nil, err
    }
    return f, nil
}

// Search returns flights filtered by optional departure place,
// arrival place and departure date.  Place filters match
// case-insensitive substrings; the date filter matches the calendar
// day of departure.  Results are ordered by departure time.
func (r *FlightRepo) Search(ctx context.Context, from, to string, day *time.Time) ([]model.Flight, error) {
    query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
    var args []interface{}
    if s := strings.TrimSpace(from); s != "" {
        query += ` AND LOWER(place_of_departure) LIKE ?`
        args = append(args, "%"+strings.ToLower(s)+"%")
    }
    if s := strings.TrimSpace(to); s != "" {
        query += ` AND LOWER(place_of_arrival) LIKE ?`
        args = append(args, "%"+strings.ToLower(s)+"%")
    }
    if day != nil {
        query += ` AND DATE(departs_at) = ?`
        args = append(args, day.UTC().Format("2006-01-02"))
    }
    query += ` ORDER BY departs_at`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Flight
    for rows.Next() {
        f, err := scanFlight(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// DecrementAvailableTx atomically takes one seat from the flight's
// counter for the given class.  The guard `> 0` makes the update a
// no-op when the cabin is sold out, which is how two requests racing
// for the last seat are decided: exactly one sees a row affected, the
// other receives ErrSoldOut.  Must run inside the same transaction
// that inserts the ticket so a later validation failure rolls the
// counter back.
func (r *FlightRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, flightID uint64, class model.SeatClass) error {
    col, err := availabilityColumn(class)
    if err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE flights SET `+col+` = `+col+` - 1, updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND `+col+` > 0`, flightID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrSoldOut
    }
    return nil
}

// IncrementAvailableTx returns one seat to the flight's counter for
// the given class, e.g. when a basket ticket is removed or a hold
// expires.  The join against the airplane caps the counter at the
// cabin's capacity so repeated releases stay idempotent.
func (r *FlightRepo) IncrementAvailableTx(ctx context.Context, tx *sql.Tx, flightID uint64, class model.SeatClass) error {
    col, err := availabilityColumn(class)
    if err != nil {
        return err
    }
    var capCol string
    if class == model.SeatClassEconomy {
        capCol = "economy_seats"
    } else {
        capCol = "business_seats"
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE flights f
         JOIN airplanes a ON a.id = f.airplane_id
         SET f.`+col+` = f.`+col+` + 1, f.updated_at = CURRENT_TIMESTAMP
         WHERE f.id = ? AND f.`+col+` < a.`+capCol, flightID)
    return err
}
