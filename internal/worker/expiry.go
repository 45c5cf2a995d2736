// Package worker runs the background sweep that releases basket
// tickets whose hold window has elapsed.  A released seat goes back
// to the flight's availability counter and the basket owner gets a
// notice explaining why the ticket disappeared or became reclaimable.
package worker

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "time"

    "github.com/iliyamo/flight-ticket-booking/internal/booking"
    "github.com/iliyamo/flight-ticket-booking/internal/model"
    "github.com/iliyamo/flight-ticket-booking/internal/repository"
)

// ExpiryPolicy selects what happens to an expired ticket.
//
//  reset  – the ticket stays in the basket with status 'available';
//           another customer booking the same flight+class reclaims it.
//  delete – the ticket is removed outright.
//
// Both release the seat and queue a basket notice.  The policy only
// applies to tickets still linked to a basket; a ticket stranded on a
// stale order has no basket left and is always deleted.
type ExpiryPolicy string

const (
    PolicyReset  ExpiryPolicy = "reset"
    PolicyDelete ExpiryPolicy = "delete"
)

const sweepBatchSize = 100

// ExpirySweeper periodically scans for 'booked' tickets older than
// the hold window, whether still sitting in a basket or stranded on
// an order that was never checked out.
type ExpirySweeper struct {
    flights  *repository.FlightRepo
    tickets  *repository.TicketRepo
    baskets  *repository.BasketRepo
    window   time.Duration
    policy   ExpiryPolicy
    interval time.Duration
}

// NewExpirySweeper builds a sweeper; the window is how long a booked
// ticket may sit unpaid, the interval how often to scan.
func NewExpirySweeper(f *repository.FlightRepo, t *repository.TicketRepo, b *repository.BasketRepo,
    window time.Duration, policy ExpiryPolicy, interval time.Duration) *ExpirySweeper {
    if f == nil || t == nil || b == nil {
        panic("nil repository passed to NewExpirySweeper")
    }
    return &ExpirySweeper{flights: f, tickets: t, baskets: b, window: window, policy: policy, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.  It sweeps once
// immediately so a restart does not extend anyone's hold.
func (s *ExpirySweeper) Start(ctx context.Context) {
    log.Printf("expiry-sweeper: started (window %s, policy %s, every %s)", s.window, s.policy, s.interval)
    s.sweep(ctx)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ticker.C:
            s.sweep(ctx)
        case <-ctx.Done():
            log.Println("expiry-sweeper: stopped")
            return
        }
    }
}

// sweep releases one batch of expired tickets in a single
// transaction.  Re-running over already-released tickets is a no-op:
// the status filter in the query no longer matches them.
func (s *ExpirySweeper) sweep(ctx context.Context) {
    tx, err := s.flights.DB().BeginTx(ctx, nil)
    if err != nil {
        log.Printf("expiry-sweeper: begin tx: %v", err)
        return
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    cutoff := time.Now().UTC().Add(-s.window)
    expired, err := s.tickets.ListExpiredBookedTx(ctx, tx, cutoff, sweepBatchSize)
    if err != nil {
        log.Printf("expiry-sweeper: list expired: %v", err)
        return
    }
    if len(expired) == 0 {
        committed = true
        _ = tx.Commit()
        return
    }

    released := 0
    for _, t := range expired {
        if err := s.release(ctx, tx, t); err != nil {
            log.Printf("expiry-sweeper: release ticket %d: %v", t.ID, err)
            return
        }
        released++
    }
    if err := tx.Commit(); err != nil {
        log.Printf("expiry-sweeper: commit: %v", err)
        return
    }
    committed = true
    log.Printf("expiry-sweeper: released %d expired ticket(s)", released)
}

func (s *ExpirySweeper) release(ctx context.Context, tx *sql.Tx, t model.Ticket) error {
    // A ticket stranded on a stale order lost its basket link when the
    // order was created, so there is no basket to notify and nothing to
    // leave behind as a reclaimable placeholder.  Return the seat and
    // drop the row regardless of policy.
    if t.OrderID != nil {
        if err := s.flights.IncrementAvailableTx(ctx, tx, t.FlightID, t.SeatClass); err != nil {
            return err
        }
        return s.tickets.DeleteTx(ctx, tx, t.ID)
    }

    flight, err := s.flights.GetByIDTx(ctx, tx, t.FlightID)
    if err != nil {
        return err
    }
    basket, err := s.baskets.GetByTicketTx(ctx, tx, t.ID)
    if err != nil {
        if errors.Is(err, repository.ErrBasketNotFound) {
            return booking.ErrInconsistentState
        }
        return err
    }
    notice := booking.ExpiryNotice(t.SeatClass, flight.PlaceOfDeparture, flight.PlaceOfArrival)
    if err := s.baskets.AppendMessageTx(ctx, tx, basket.ID, notice); err != nil {
        return err
    }
    if err := s.flights.IncrementAvailableTx(ctx, tx, t.FlightID, t.SeatClass); err != nil {
        return err
    }
    switch s.policy {
    case PolicyDelete:
        return s.tickets.DeleteTx(ctx, tx, t.ID)
    default:
        return s.tickets.SetStatusTx(ctx, tx, t.ID, model.TicketStatusAvailable)
    }
}
