package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, invoice_id, hash, network, created_at`

// TransactionRepo implements ports.TransactionRepository.
// (hash, network) is unique, so an on-chain event settles at most one invoice.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Save records an on-chain payment. A repeated (hash, network) fails with ports.ErrDuplicate.
func (r *TransactionRepo) Save(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5)`

	saved := *t
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query, saved.ID, saved.InvoiceID, saved.Hash, saved.Network, saved.CreatedAt)
	if err != nil {
		return nil, wrapWriteErr("insert transaction", err)
	}
	return &saved, nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.getOne(ctx, "get transaction by id", query, id)
}

// GetByHashAndNetwork fetches the record of one on-chain event.
func (r *TransactionRepo) GetByHashAndNetwork(ctx context.Context, hash, network string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE hash = $1 AND network = $2`
	return r.getOne(ctx, "get transaction by hash", query, hash, network)
}

func (r *TransactionRepo) getOne(ctx context.Context, op, query string, args ...any) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.InvoiceID, &t.Hash, &t.Network, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// GetByInvoice lists the transactions applied to an invoice.
func (r *TransactionRepo) GetByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE invoice_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by invoice: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.InvoiceID, &t.Hash, &t.Network, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txs, nil
}

// Delete removes a transaction record.
func (r *TransactionRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
