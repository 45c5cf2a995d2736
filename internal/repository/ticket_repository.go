package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// TicketRepo provides data access to the tickets table.  Ticket
// writes almost always happen inside a transaction shared with the
// flight counter update, so most mutating methods take a *sql.Tx and
// leave commit/rollback to the caller.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, flight_id, order_id, seat_class, seat_number, status, created_at, updated_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*model.Ticket, error) {
    var (
        t       model.Ticket
        orderID sql.NullInt64
        seatNum sql.NullInt64
    )
    err := row.Scan(&t.ID, &t.FlightID, &orderID, &t.SeatClass, &seatNum, &t.Status,
        &t.CreatedAt, &t.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if orderID.Valid {
        v := uint64(orderID.Int64)
        t.OrderID = &v
    }
    if seatNum.Valid {
        v := uint32(seatNum.Int64)
        t.SeatNumber = &v
    }
    return &t, nil
}

// CreateTx inserts a new ticket within the scope of an existing
// transaction and populates its generated ID.  The caller has already
// decremented the flight counter in the same transaction; committing
// or rolling back is also the caller's responsibility.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
    const q = `INSERT INTO tickets (flight_id, seat_class, status) VALUES (?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, t.FlightID, t.SeatClass, t.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    return nil
}

// GetByID retrieves a ticket by its id.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
    t, err := scanTicket(r.db.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrTicketNotFound
        }
        return nil, err
    }
    return t, nil
}

// GetByIDTx is GetByID within an existing transaction, locking the
// row so concurrent customization and checkout serialize.
func (r *TicketRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Ticket, error) {
    t, err := scanTicket(tx.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE id = ? FOR UPDATE`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrTicketNotFound
        }
        return nil, err
    }
    return t, nil
}

// TakenSeatNumbers returns the assigned seat numbers of every ticket
// for the given flight and class.  It feeds the free-seat computation
// and is a pure read with no side effects.
func (r *TicketRepo) TakenSeatNumbers(ctx context.Context, flightID uint64, class model.SeatClass) ([]uint32, error) {
    return takenSeatNumbers(ctx, r.db, flightID, class, 0)
}

// TakenSeatNumbersTx is TakenSeatNumbers within a transaction,
// excluding one ticket (the one being customized) from the result.
func (r *TicketRepo) TakenSeatNumbersTx(ctx context.Context, tx *sql.Tx, flightID uint64, class model.SeatClass, excludeTicketID uint64) ([]uint32, error) {
    return takenSeatNumbers(ctx, tx, flightID, class, excludeTicketID)
}

type querier interface {
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func takenSeatNumbers(ctx context.Context, q querier, flightID uint64, class model.SeatClass, exclude uint64) ([]uint32, error) {
    query := `SELECT seat_number FROM tickets
              WHERE flight_id = ? AND seat_class = ? AND seat_number IS NOT NULL`
    args := []interface{}{flightID, class}
    if exclude != 0 {
        query += ` AND id <> ?`
        args = append(args, exclude)
    }
    rows, err := q.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    taken := make([]uint32, 0)
    for rows.Next() {
        var n uint32
        if err := rows.Scan(&n); err != nil {
            return nil, err
        }
        taken = append(taken, n)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return taken, nil
}

// OldestPlaceholderTx returns the oldest ticket in 'available' status
// for the given flight and class, locking it for the reclamation that
// follows.  It returns nil without error when no placeholder exists.
func (r *TicketRepo) OldestPlaceholderTx(ctx context.Context, tx *sql.Tx, flightID uint64, class model.SeatClass) (*model.Ticket, error) {
    t, err := scanTicket(tx.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets
         WHERE flight_id = ? AND seat_class = ? AND status = ?
         ORDER BY created_at, id LIMIT 1 FOR UPDATE`,
        flightID, class, model.TicketStatusAvailable))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, nil
        }
        return nil, err
    }
    return t, nil
}

// DeleteTx removes a ticket.  Facility selections and basket links
// cascade via foreign keys.
func (r *TicketRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    res, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrTicketNotFound
    }
    return nil
}

// AssignToOrderTx attaches a ticket to an order.  Only tickets still
// unattached can be claimed; zero rows affected means the ticket was
// already taken by another order or does not exist.
func (r *TicketRepo) AssignToOrderTx(ctx context.Context, tx *sql.Tx, ticketID, orderID uint64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE tickets SET order_id = ?, updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND order_id IS NULL`, orderID, ticketID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrConflict
    }
    return nil
}

// UpdateSeatNumberTx records the customer's seat choice.  Validation
// against range and duplicates happens in the caller before this
// write; the unique index on (flight_id, seat_class, seat_number)
// still backstops races between two customizations.
func (r *TicketRepo) UpdateSeatNumberTx(ctx context.Context, tx *sql.Tx, ticketID uint64, seatNumber uint32) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE tickets SET seat_number = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        seatNumber, ticketID)
    return err
}

// SetStatusTx moves a single ticket to the given status.
func (r *TicketRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, ticketID uint64, status model.TicketStatus) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE tickets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        status, ticketID)
    return err
}

// ListByOrderTx returns all tickets of an order inside a transaction,
// locked for update, ordered by id for deterministic validation.
func (r *TicketRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.Ticket, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE order_id = ? ORDER BY id FOR UPDATE`, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Ticket
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// ListByOrder returns all tickets of an order outside a transaction.
func (r *TicketRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE order_id = ? ORDER BY id`, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Ticket
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// ListExpiredBookedTx returns tickets whose hold window has elapsed:
// status 'booked' and created before the cutoff, either sitting in a
// basket (no order) or stranded on an order that was never checked
// out ('new' or 'payment_failed').  Tickets on a pending or paid
// order are checked_out and never match.  The rows are locked so a
// concurrent sweep or checkout serializes with this one; re-running
// the sweep after the tickets were released is a no-op because the
// status filter no longer matches.
func (r *TicketRepo) ListExpiredBookedTx(ctx context.Context, tx *sql.Tx, cutoff time.Time, limit int) ([]model.Ticket, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT t.id, t.flight_id, t.order_id, t.seat_class, t.seat_number, t.status, t.created_at, t.updated_at
         FROM tickets t
         LEFT JOIN orders o ON o.id = t.order_id
         WHERE t.status = ? AND t.created_at < ?
           AND (t.order_id IS NULL OR o.status IN (?, ?))
         ORDER BY t.created_at LIMIT ? FOR UPDATE`,
        model.TicketStatusBooked, cutoff.UTC().Format("2006-01-02 15:04:05"),
        model.OrderStatusNew, model.OrderStatusPaymentFailed, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Ticket
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}
