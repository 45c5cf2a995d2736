package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-ticket-booking/internal/booking"
	"github.com/iliyamo/flight-ticket-booking/internal/model"
	"github.com/iliyamo/flight-ticket-booking/internal/payment"
	"github.com/iliyamo/flight-ticket-booking/internal/repository"
)

var orderCols = []string{"id", "user_id", "status", "price_cents", "payment_ref",
	"created_at", "updated_at"}

var userCols = []string{"id", "email", "password_hash", "role", "is_active",
	"created_at", "updated_at"}

func newOrderHandlerMock(t *testing.T, gw *payment.Client) (*OrderHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	fares := booking.FareTable{EconomyCents: 150_00, BusinessCents: 400_00, SeatSurchargeCents: 10_00}
	h := NewOrderHandler(
		repository.NewOrderRepo(db),
		repository.NewTicketRepo(db),
		repository.NewBasketRepo(db),
		repository.NewFlightRepo(db),
		repository.NewAirplaneRepo(db),
		repository.NewFacilityRepo(db),
		repository.NewUserRepo(db),
		gw, fares,
	)
	return h, mock
}

func userRow(id uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, "u@example.com", "x", "CUSTOMER", true, now, now)
}

// Two tickets of one order claiming the same seat must fail checkout
// like any other taken seat, rolling the whole transaction back.
func TestCheckoutDuplicateSeatRollsBack(t *testing.T) {
	h, mock := newOrderHandlerMock(t, payment.NewClient(payment.Config{APIURL: "http://unused", SecretKey: "s"}))
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE id").WillReturnRows(userRow(42))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders WHERE id").WillReturnRows(
		sqlmock.NewRows(orderCols).AddRow(9, 42, "new", 0, nil, now, now))
	mock.ExpectQuery("FROM tickets WHERE order_id").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(21, 1, 9, "economy", 5, "booked", now, now).
			AddRow(22, 1, 9, "economy", 5, "booked", now, now))
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(flightRow(10, 5))
	mock.ExpectQuery("FROM airplanes WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "economy_seats", "business_seats", "created_at"}).
			AddRow(1, 20, 6, now))
	// Ticket 21's check excludes itself, so its sibling's seat 5 shows
	// up as taken.
	mock.ExpectQuery("SELECT seat_number FROM tickets").WillReturnRows(
		sqlmock.NewRows([]string{"seat_number"}).AddRow(5))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/orders/9/checkout", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Checkout(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already taken")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A gateway failure after the committed checkout marks the order
// payment_failed so checkout stays retryable; the payment reference
// was already stored inside the checkout transaction.
func TestCheckoutGatewayFailureMarksPaymentFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	gw := payment.NewClient(payment.Config{APIURL: srv.URL, SecretKey: "s"})

	h, mock := newOrderHandlerMock(t, gw)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE id").WillReturnRows(userRow(42))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders WHERE id").WillReturnRows(
		sqlmock.NewRows(orderCols).AddRow(9, 42, "new", 0, nil, now, now))
	mock.ExpectQuery("FROM tickets WHERE order_id").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(21, 1, 9, "economy", 3, "booked", now, now))
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(flightRow(10, 5))
	mock.ExpectQuery("FROM airplanes WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "economy_seats", "business_seats", "created_at"}).
			AddRow(1, 20, 6, now))
	mock.ExpectQuery("SELECT seat_number FROM tickets").WillReturnRows(
		sqlmock.NewRows([]string{"seat_number"}))
	mock.ExpectQuery("FROM ticket_facilities").WillReturnRows(
		sqlmock.NewRows([]string{"ticket_id", "name", "price_cents", "count"}))
	// One economy ticket: 150.00 fare + 10.00 seat surcharge.
	mock.ExpectExec("UPDATE orders SET price_cents").
		WithArgs(160_00, model.OrderStatusPendingPayment, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tickets SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.OrderStatusPaymentFailed, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newJSONContext(http.MethodPost, "/v1/orders/9/checkout", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Checkout(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment_failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
