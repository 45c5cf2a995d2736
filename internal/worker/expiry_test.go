package worker

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-ticket-booking/internal/repository"
)

func newSweeperMock(t *testing.T, policy ExpiryPolicy) (*ExpirySweeper, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := NewExpirySweeper(
		repository.NewFlightRepo(db),
		repository.NewTicketRepo(db),
		repository.NewBasketRepo(db),
		30*time.Minute, policy, time.Minute,
	)
	return s, mock
}

var ticketCols = []string{"id", "flight_id", "order_id", "seat_class", "seat_number",
	"status", "created_at", "updated_at"}

// An expired basket ticket is released under the reset policy: seat
// returned, notice queued, ticket left as a reclaimable placeholder.
func TestSweepResetsExpiredBasketTicket(t *testing.T) {
	s, mock := newSweeperMock(t, PolicyReset)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("LEFT JOIN orders o ON o.id = t.order_id").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(7, 1, nil, "economy", nil, "booked", now.Add(-time.Hour), now))
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "airplane_id", "place_of_departure", "place_of_arrival",
			"departs_at", "arrives_at", "available_economy_seats", "available_business_seats",
			"created_at", "updated_at"}).
			AddRow(1, 1, "Kyiv", "Lviv", now, now, 3, 5, now, now))
	mock.ExpectQuery("JOIN basket_tickets bt ON bt.basket_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "messages", "created_at", "updated_at"}).
			AddRow(3, 99, "", now, now))
	mock.ExpectExec("SET messages").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("JOIN airplanes a ON a.id = f.airplane_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tickets SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s.sweep(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A booked ticket stranded on an order that was never checked out has
// no basket left; the sweep returns its seat and deletes the row so a
// stale order can never block inventory.
func TestSweepReleasesTicketOnStaleOrder(t *testing.T) {
	s, mock := newSweeperMock(t, PolicyReset)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("LEFT JOIN orders o ON o.id = t.order_id").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(21, 1, 9, "economy", 5, "booked", now.Add(-time.Hour), now))
	mock.ExpectExec("JOIN airplanes a ON a.id = f.airplane_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tickets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s.sweep(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An empty batch commits without touching anything.
func TestSweepEmptyBatch(t *testing.T) {
	s, mock := newSweeperMock(t, PolicyDelete)

	mock.ExpectBegin()
	mock.ExpectQuery("LEFT JOIN orders o ON o.id = t.order_id").WillReturnRows(
		sqlmock.NewRows(ticketCols))
	mock.ExpectCommit()

	s.sweep(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
