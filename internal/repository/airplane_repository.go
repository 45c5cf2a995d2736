package repository // repository defines data access for airplanes

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// AirplaneRepo provides methods to work with airplanes in the database.
// Airplanes are immutable once a flight references them; only Create,
// lookups and a guarded Delete are exposed.
type AirplaneRepo struct {
    db *sql.DB
}

// NewAirplaneRepo constructs an AirplaneRepo with the given DB handle.
func NewAirplaneRepo(db *sql.DB) *AirplaneRepo {
    return &AirplaneRepo{db: db}
}

// Create inserts a single airplane record. On success the airplane's
// ID is populated. Seat-count bounds are validated in the handler
// before this is called.
func (r *AirplaneRepo) Create(ctx context.Context, a *model.Airplane) error {
    const q = `INSERT INTO airplanes (economy_seats, business_seats) VALUES (?, ?)`
    res, err := r.db.ExecContext(ctx, q, a.EconomySeats, a.BusinessSeats)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    a.ID = uint64(id)
    return nil
}

// GetByID retrieves an airplane by its id.
func (r *AirplaneRepo) GetByID(ctx context.Context, id uint64) (*model.Airplane, error) {
    const q = `SELECT id, economy_seats, business_seats, created_at FROM airplanes WHERE id = ?`
    var a model.Airplane
    err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.EconomySeats, &a.BusinessSeats, &a.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrAirplaneNotFound
        }
        return nil, err
    }
    return &a, nil
}

// GetByIDTx is GetByID within an existing transaction.  Checkout and
// seat validation read the capacity through the transaction so the
// numbers they validate against are the ones the transaction sees.
func (r *AirplaneRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Airplane, error) {
    const q = `SELECT id, economy_seats, business_seats, created_at FROM airplanes WHERE id = ?`
    var a model.Airplane
    err := tx.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.EconomySeats, &a.BusinessSeats, &a.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrAirplaneNotFound
        }
        return nil, err
    }
    return &a, nil
}

// ListAll returns every registered airplane ordered by id.
func (r *AirplaneRepo) ListAll(ctx context.Context) ([]model.Airplane, error) {
    const q = `SELECT id, economy_seats, business_seats, created_at FROM airplanes ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Airplane
    for rows.Next() {
        var a model.Airplane
        if err := rows.Scan(&a.ID, &a.EconomySeats, &a.BusinessSeats, &a.CreatedAt); err != nil {
            return nil, err
        }
        result = append(result, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Delete removes an airplane only when no flight references it.
// Returns ErrConflict when flights still exist and ErrAirplaneNotFound
// when the airplane does not exist.
func (r *AirplaneRepo) Delete(ctx context.Context, id uint64) error {
    var n int
    if err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM flights WHERE airplane_id = ?`, id).Scan(&n); err != nil {
        return err
    }
    if n > 0 {
        return ErrConflict
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM airplanes WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if affected, _ := res.RowsAffected(); affected == 0 {
        return ErrAirplaneNotFound
    }
    return nil
}
