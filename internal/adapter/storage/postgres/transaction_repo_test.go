package postgres

import (
	"context"
	"testing"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		InvoiceID: uuid.New(),
		Hash:      "0xabc",
		Network:   "erc20",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func transactionRows(txs ...*domain.Transaction) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "invoice_id", "hash", "network", "created_at"})
	for _, t := range txs {
		rows.AddRow(t.ID, t.InvoiceID, t.Hash, t.Network, t.CreatedAt)
	}
	return rows
}

func TestTransactionRepo_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.InvoiceID, tx.Hash, tx.Network, tx.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := repo.Save(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Save_DuplicateHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.InvoiceID, tx.Hash, tx.Network, tx.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_hash_network_key"})

	_, err = repo.Save(context.Background(), tx)
	assert.ErrorIs(t, err, ports.ErrDuplicate)
}

func TestTransactionRepo_GetByHashAndNetwork(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE hash = \\$1 AND network = \\$2").
		WithArgs("0xabc", "erc20").
		WillReturnRows(transactionRows(tx))

	got, err := repo.GetByHashAndNetwork(context.Background(), "0xabc", "erc20")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.InvoiceID, got.InvoiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionRepo_GetByInvoice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE invoice_id").
		WithArgs(tx.InvoiceID).
		WillReturnRows(transactionRows(tx))

	got, err := repo.GetByInvoice(context.Background(), tx.InvoiceID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xabc", got[0].Hash)
}

func TestTransactionRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM transactions").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)
}
