package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// BasketRepo provides data access to baskets and the basket_tickets
// join table.  A basket is created lazily the first time a user books
// a ticket, and its messages column queues reclamation and expiry
// notices until the owner next views the basket.
type BasketRepo struct {
    db *sql.DB
}

// NewBasketRepo returns a new BasketRepo bound to the given database.
func NewBasketRepo(db *sql.DB) *BasketRepo { return &BasketRepo{db: db} }

const basketColumns = `id, user_id, messages, created_at, updated_at`

func scanBasket(row interface{ Scan(...interface{}) error }) (*model.Basket, error) {
    var b model.Basket
    if err := row.Scan(&b.ID, &b.UserID, &b.Messages, &b.CreatedAt, &b.UpdatedAt); err != nil {
        return nil, err
    }
    return &b, nil
}

// GetOrCreateByUserTx returns the user's basket, creating it when the
// user has none yet.  Runs inside the caller's transaction so a new
// basket and its first ticket link commit together.
func (r *BasketRepo) GetOrCreateByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.Basket, error) {
    b, err := scanBasket(tx.QueryRowContext(ctx,
        `SELECT `+basketColumns+` FROM baskets WHERE user_id = ? FOR UPDATE`, userID))
    if err == nil {
        return b, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return nil, err
    }
    res, err := tx.ExecContext(ctx, `INSERT INTO baskets (user_id, messages) VALUES (?, '')`, userID)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return scanBasket(tx.QueryRowContext(ctx,
        `SELECT `+basketColumns+` FROM baskets WHERE id = ?`, id))
}

// GetByUser returns the user's basket or ErrBasketNotFound.
func (r *BasketRepo) GetByUser(ctx context.Context, userID uint64) (*model.Basket, error) {
    b, err := scanBasket(r.db.QueryRowContext(ctx,
        `SELECT `+basketColumns+` FROM baskets WHERE user_id = ?`, userID))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBasketNotFound
        }
        return nil, err
    }
    return b, nil
}

// GetByTicketTx returns the basket holding the given ticket.  The
// reclamation path relies on the ErrBasketNotFound return: a
// placeholder ticket without an owning basket is an inconsistent
// state that must surface, not be ignored.
func (r *BasketRepo) GetByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.Basket, error) {
    b, err := scanBasket(tx.QueryRowContext(ctx,
        `SELECT b.id, b.user_id, b.messages, b.created_at, b.updated_at
         FROM baskets b
         JOIN basket_tickets bt ON bt.basket_id = b.id
         WHERE bt.ticket_id = ? FOR UPDATE`, ticketID))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBasketNotFound
        }
        return nil, err
    }
    return b, nil
}

// AddTicketTx links a ticket into a basket.
func (r *BasketRepo) AddTicketTx(ctx context.Context, tx *sql.Tx, basketID, ticketID uint64) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO basket_tickets (basket_id, ticket_id) VALUES (?, ?)`, basketID, ticketID)
    return err
}

// RemoveTicketTx unlinks a ticket from a basket.  Zero rows affected
// means the ticket was not in the basket.
func (r *BasketRepo) RemoveTicketTx(ctx context.Context, tx *sql.Tx, basketID, ticketID uint64) error {
    res, err := tx.ExecContext(ctx,
        `DELETE FROM basket_tickets WHERE basket_id = ? AND ticket_id = ?`, basketID, ticketID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrTicketNotFound
    }
    return nil
}

// ContainsTicketTx reports whether the basket holds the ticket.
func (r *BasketRepo) ContainsTicketTx(ctx context.Context, tx *sql.Tx, basketID, ticketID uint64) (bool, error) {
    var n int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM basket_tickets WHERE basket_id = ? AND ticket_id = ?`,
        basketID, ticketID).Scan(&n)
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ListTickets returns the tickets currently held in a basket ordered
// by creation time.
func (r *BasketRepo) ListTickets(ctx context.Context, basketID uint64) ([]model.Ticket, error) {
    return listBasketTickets(ctx, r.db, basketID)
}

// ListTicketsTx is ListTickets within a transaction.  The basket view
// drains notices and lists tickets in one transaction so a failed
// listing rolls the drain back and no notice is lost.
func (r *BasketRepo) ListTicketsTx(ctx context.Context, tx *sql.Tx, basketID uint64) ([]model.Ticket, error) {
    return listBasketTickets(ctx, tx, basketID)
}

func listBasketTickets(ctx context.Context, q querier, basketID uint64) ([]model.Ticket, error) {
    rows, err := q.QueryContext(ctx,
        `SELECT t.id, t.flight_id, t.order_id, t.seat_class, t.seat_number, t.status, t.created_at, t.updated_at
         FROM tickets t
         JOIN basket_tickets bt ON bt.ticket_id = t.id
         WHERE bt.basket_id = ?
         ORDER BY t.created_at, t.id`, basketID)
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

// AppendMessageTx queues a notice for the basket's owner.  Messages
// are newline-separated; DrainMessages splits them back apart.
func (r *BasketRepo) AppendMessageTx(ctx context.Context, tx *sql.Tx, basketID uint64, msg string) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE baskets
         SET messages = IF(messages = '', ?, CONCAT(messages, '\n', ?)), updated_at = CURRENT_TIMESTAMP
         WHERE id = ?`, msg, msg, basketID)
    return err
}

// DrainMessagesTx reads and clears the basket's queued notices in one
// transaction so each notice is shown exactly once.
func (r *BasketRepo) DrainMessagesTx(ctx context.Context, tx *sql.Tx, basketID uint64) (string, error) {
    var messages string
    err := tx.QueryRowContext(ctx,
        `SELECT messages FROM baskets WHERE id = ? FOR UPDATE`, basketID).Scan(&messages)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", ErrBasketNotFound
        }
        return "", err
    }
    if messages == "" {
        return "", nil
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE baskets SET messages = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, basketID)
    if err != nil {
        return "", err
    }
    return messages, nil
}
