package ports

import (
	"context"
	"errors"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
)

// ErrDuplicate is wrapped by repositories when a uniqueness constraint rejects a write:
// (user, network) for wallets, (hash, network) for transactions.
var ErrDuplicate = errors.New("duplicate record")

// Lookups return (nil, nil) when the record does not exist.

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	GetByUserAndNetwork(ctx context.Context, userID int64, network string) (*domain.Wallet, error)
	// Save inserts the wallet, assigning an identifier when unset.
	Save(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByUser(ctx context.Context, userID int64) ([]domain.Invoice, error)
	GetByStatus(ctx context.Context, status domain.InvoiceStatus, limit int) ([]domain.Invoice, error)
	// GetByStatusAfter pages through invoices in status ordered by (created_at, id),
	// starting after the cursor, or from the beginning when after is nil.
	GetByStatusAfter(ctx context.Context, status domain.InvoiceStatus, after *domain.InvoiceCursor, limit int) ([]domain.Invoice, error)
	// UpdateStatus moves a PENDING invoice to status. An invoice that is already
	// terminal is returned unchanged; a missing one yields (nil, nil).
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionRepository defines persistence operations for recorded on-chain payments.
type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByHashAndNetwork(ctx context.Context, hash, network string) (*domain.Transaction, error)
	GetByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// RateProvider is the read side of exchange rates used when pricing invoices.
type RateProvider interface {
	GetRate(ctx context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error)
}

// ExchangeRateRepository stores rate snapshots pushed by the external rate feed.
type ExchangeRateRepository interface {
	RateProvider
	// Save inserts or replaces the rate of its (fiat, crypto) pair.
	Save(ctx context.Context, rate *domain.ExchangeRate) (*domain.ExchangeRate, error)
	ListByCryptoCurrency(ctx context.Context, cryptoCurrency string) ([]domain.ExchangeRate, error)
}
