package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-ticket-booking/internal/booking"
	"github.com/iliyamo/flight-ticket-booking/internal/repository"
)

func newBasketHandlerMock(t *testing.T) (*BasketHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewBasketHandler(
		repository.NewFlightRepo(db),
		repository.NewTicketRepo(db),
		repository.NewBasketRepo(db),
		repository.NewAirplaneRepo(db),
	)
	return h, mock
}

func newJSONContext(method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

var flightCols = []string{"id", "airplane_id", "place_of_departure", "place_of_arrival",
	"departs_at", "arrives_at", "available_economy_seats", "available_business_seats",
	"created_at", "updated_at"}

func flightRow(availEcon, availBus uint32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(flightCols).
		AddRow(1, 1, "Kyiv", "Lviv", now, now, availEcon, availBus, now, now)
}

var ticketCols = []string{"id", "flight_id", "order_id", "seat_class", "seat_number",
	"status", "created_at", "updated_at"}

var basketCols = []string{"id", "user_id", "messages", "created_at", "updated_at"}

// Two requests racing for the last seat are decided by the conditional
// counter decrement: the loser's update touches zero rows and the
// request fails with a validation error, not a stuck seat.
func TestAddTicketSoldOut(t *testing.T) {
	h, mock := newBasketHandlerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(flightRow(0, 5))
	mock.ExpectQuery("ORDER BY created_at, id LIMIT 1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE flights SET available_economy_seats").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/basket/tickets",
		`{"flight_id":1,"seat_class":"economy"}`, 42)
	require.NoError(t, h.AddTicket(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no available economy seats")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Booking into a flight+class with a released placeholder reclaims the
// oldest one: the placeholder is deleted and its owner's basket gets
// the notice, all inside the booking transaction.
func TestAddTicketReclaimsOldestPlaceholder(t *testing.T) {
	h, mock := newBasketHandlerMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(flightRow(3, 5))
	mock.ExpectQuery("ORDER BY created_at, id LIMIT 1").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(7, 1, nil, "economy", nil, "available", now, now))
	mock.ExpectQuery("JOIN basket_tickets bt ON bt.basket_id").WillReturnRows(
		sqlmock.NewRows(basketCols).AddRow(3, 99, "", now, now))
	notice := booking.ReclamationNotice("economy", "Kyiv", "Lviv")
	mock.ExpectExec("SET messages").
		WithArgs(notice, notice, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tickets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE flights SET available_economy_seats").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("FROM baskets WHERE user_id").WillReturnRows(
		sqlmock.NewRows(basketCols).AddRow(4, 42, "", now, now))
	mock.ExpectExec("INSERT INTO basket_tickets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newJSONContext(http.MethodPost, "/v1/basket/tickets",
		`{"flight_id":1,"seat_class":"economy"}`, 42)
	require.NoError(t, h.AddTicket(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":11`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A placeholder without an owning basket means the bookkeeping is
// broken: the whole booking rolls back and the caller gets a 500.
func TestAddTicketBasketlessPlaceholderAborts(t *testing.T) {
	h, mock := newBasketHandlerMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM flights WHERE id").WillReturnRows(flightRow(3, 5))
	mock.ExpectQuery("ORDER BY created_at, id LIMIT 1").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(7, 1, nil, "economy", nil, "available", now, now))
	mock.ExpectQuery("JOIN basket_tickets bt ON bt.basket_id").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/basket/tickets",
		`{"flight_id":1,"seat_class":"economy"}`, 42)
	require.NoError(t, h.AddTicket(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "inconsistent booking state")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed ticket listing rolls the notice drain back so the notices
// stay queued for the next view.
func TestViewKeepsNoticesWhenListingFails(t *testing.T) {
	h, mock := newBasketHandlerMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM baskets WHERE user_id").WillReturnRows(
		sqlmock.NewRows(basketCols).AddRow(4, 42, "notice", now, now))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT messages FROM baskets WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"messages"}).AddRow("notice"))
	mock.ExpectExec("UPDATE baskets SET messages = ''").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("JOIN basket_tickets bt ON bt.ticket_id").
		WillReturnError(errors.New("listing failed"))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodGet, "/v1/basket", "", 42)
	require.NoError(t, h.View(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Happy-path view delivers the queued notices exactly once, with the
// drain and the ticket listing committed together.
func TestViewDrainsNotices(t *testing.T) {
	h, mock := newBasketHandlerMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM baskets WHERE user_id").WillReturnRows(
		sqlmock.NewRows(basketCols).AddRow(4, 42, "a\nb", now, now))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT messages FROM baskets WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"messages"}).AddRow("a\nb"))
	mock.ExpectExec("UPDATE baskets SET messages = ''").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("JOIN basket_tickets bt ON bt.ticket_id").WillReturnRows(
		sqlmock.NewRows(ticketCols).
			AddRow(7, 1, nil, "economy", nil, "booked", now, now))
	mock.ExpectCommit()

	c, rec := newJSONContext(http.MethodGet, "/v1/basket", "", 42)
	require.NoError(t, h.View(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a"`)
	assert.Contains(t, rec.Body.String(), `"b"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
