package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-ticket-booking/internal/model"
)

// The gateway reference is written by the same statement that moves
// the order to pending_payment: an order awaiting payment always has
// a reference a callback can match.
func TestFinalizeTxStoresPaymentRef(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET price_cents = ., status = ., payment_ref = .`).
		WithArgs(320_00, model.OrderStatusPendingPayment, "DH0000000042", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewOrderRepo(db)
	require.NoError(t, repo.FinalizeTx(ctx, tx, 9, 320_00, "DH0000000042"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
