package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Numeric columns are read back as text so decimal.Decimal keeps every digit.
const invoiceColumns = `id, user_id, created_at, updated_at, expires_at, status,
		fiat_amount::text, fiat_currency, crypto_amount::text, crypto_currency, contract_address, network`

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// Save inserts a new invoice.
func (r *InvoiceRepo) Save(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	query := `INSERT INTO invoices (id, user_id, created_at, updated_at, expires_at, status,
		fiat_amount, fiat_currency, crypto_amount, crypto_currency, contract_address, network)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	saved := *inv
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		saved.ID, saved.UserID, saved.CreatedAt, saved.UpdatedAt, saved.ExpiresAt, string(saved.Status),
		nullableDecimal(saved.FiatAmount), saved.FiatCurrency, saved.CryptoAmount.String(), saved.CryptoCurrency,
		saved.ContractAddress, saved.Network,
	)
	if err != nil {
		return nil, wrapWriteErr("insert invoice", err)
	}
	return &saved, nil
}

// GetByID fetches an invoice by UUID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}
	return inv, nil
}

// GetByUser lists a user's invoices, newest first.
func (r *InvoiceRepo) GetByUser(ctx context.Context, userID int64) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by user: %w", err)
	}
	return collectInvoices(rows)
}

// GetByStatus lists up to limit invoices in status, oldest first.
func (r *InvoiceRepo) GetByStatus(ctx context.Context, status domain.InvoiceStatus, limit int) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1 ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices by status: %w", err)
	}
	return collectInvoices(rows)
}

// GetByStatusAfter lists up to limit invoices in status that sort after the cursor
// by (created_at, id). A nil cursor starts from the oldest invoice.
func (r *InvoiceRepo) GetByStatusAfter(ctx context.Context, status domain.InvoiceStatus, after *domain.InvoiceCursor, limit int) ([]domain.Invoice, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1
			ORDER BY created_at ASC, id ASC LIMIT $2`
		rows, err = r.pool.Query(ctx, query, string(status), limit)
	} else {
		query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1
			AND (created_at, id) > ($2, $3)
			ORDER BY created_at ASC, id ASC LIMIT $4`
		rows, err = r.pool.Query(ctx, query, string(status), after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("page invoices by status: %w", err)
	}
	return collectInvoices(rows)
}

// UpdateStatus moves a PENDING invoice to status. The WHERE clause keeps terminal
// states untouched; in that case the current row is returned as stored.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	query := `UPDATE invoices SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id, string(status), time.Now().UTC()))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update invoice status: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an invoice and, by cascade, its transactions.
func (r *InvoiceRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice rows: %w", err)
	}
	return invoices, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv          domain.Invoice
		status       string
		fiatAmount   *string
		cryptoAmount string
	)
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.CreatedAt, &inv.UpdatedAt, &inv.ExpiresAt, &status,
		&fiatAmount, &inv.FiatCurrency, &cryptoAmount, &inv.CryptoCurrency, &inv.ContractAddress, &inv.Network,
	)
	if err != nil {
		return nil, err
	}

	inv.Status = domain.InvoiceStatus(status)
	if inv.CryptoAmount, err = decimal.NewFromString(cryptoAmount); err != nil {
		return nil, fmt.Errorf("parse crypto_amount %q: %w", cryptoAmount, err)
	}
	if fiatAmount != nil {
		d, err := decimal.NewFromString(*fiatAmount)
		if err != nil {
			return nil, fmt.Errorf("parse fiat_amount %q: %w", *fiatAmount, err)
		}
		inv.FiatAmount = &d
	}
	return &inv, nil
}

// nullableDecimal renders an optional amount as numeric text, or NULL.
func nullableDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
