package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// OrderRepo provides data access to the orders table.  Price and
// status changes during checkout happen through Tx methods so the
// order update commits or rolls back together with its tickets.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, status, price_cents, payment_ref, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
    var (
        o      model.Order
        payRef sql.NullString
    )
    err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PriceCents, &payRef, &o.CreatedAt, &o.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if payRef.Valid {
        v := payRef.String
        o.PaymentRef = &v
    }
    return &o, nil
}

// CreateTx inserts a new order in status 'new' and populates its ID.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    const q = `INSERT INTO orders (user_id, status, price_cents) VALUES (?, ?, 0)`
    res, err := tx.ExecContext(ctx, q, o.UserID, model.OrderStatusNew)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    o.Status = model.OrderStatusNew
    return nil
}

// GetByIDForUser returns an order after enforcing ownership.  It
// returns ErrOrderNotFound when the order does not exist and
// ErrForbidden when it belongs to a different user.
func (r *OrderRepo) GetByIDForUser(ctx context.Context, orderID, userID uint64) (*model.Order, error) {
    o, err := scanOrder(r.db.QueryRowContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrOrderNotFound
        }
        return nil, err
    }
    if o.UserID != userID {
        return nil, ErrForbidden
    }
    return o, nil
}

// GetByIDForUserTx is GetByIDForUser inside a transaction with the
// order row locked.
func (r *OrderRepo) GetByIDForUserTx(ctx context.Context, tx *sql.Tx, orderID, userID uint64) (*model.Order, error) {
    o, err := scanOrder(tx.QueryRowContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, orderID))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrOrderNotFound
        }
        return nil, err
    }
    if o.UserID != userID {
        return nil, ErrForbidden
    }
    return o, nil
}

// GetByPaymentRef looks an order up by the gateway reference carried
// in a payment callback.
func (r *OrderRepo) GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error) {
    o, err := scanOrder(r.db.QueryRowContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE payment_ref = ?`, ref))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrOrderNotFound
        }
        return nil, err
    }
    return o, nil
}

// ListByUser returns all orders of a user, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var result []model.Order
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// FinalizeTx stores the computed price, the gateway reference and the
// pending_payment status as part of the checkout transaction.  The
// reference is written here, before the invoice request goes out, so
// an order in pending_payment can always be matched by a callback; a
// retried checkout simply overwrites it.
func (r *OrderRepo) FinalizeTx(ctx context.Context, tx *sql.Tx, orderID uint64, priceCents uint64, paymentRef string) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE orders SET price_cents = ?, status = ?, payment_ref = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        priceCents, model.OrderStatusPendingPayment, paymentRef, orderID)
    return err
}

// SetStatus moves an order to the given settlement status.
func (r *OrderRepo) SetStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, orderID)
    return err
}
