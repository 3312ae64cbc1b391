package ports

import (
	"context"
	"time"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenService issues and validates the bearer tokens of API callers.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// LeaseStore hands out short-lived exclusive leases keyed by name.
type LeaseStore interface {
	// Acquire returns true when the lease was free and is now held by the caller.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// --- Service Ports (Business Logic) ---

// WalletProvisioner returns the single wallet of a (user, network) pair, creating it on first use.
type WalletProvisioner interface {
	GetOrCreateWallet(ctx context.Context, userID int64, network string) (*domain.Wallet, error)
}

// InvoiceService creates invoices and answers read-only questions about them.
type InvoiceService interface {
	CreateFiatInvoice(ctx context.Context, req FiatInvoiceRequest) (*domain.Invoice, error)
	CreateCryptoInvoice(ctx context.Context, req CryptoInvoiceRequest) (*domain.Invoice, error)
	GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID) (domain.InvoiceStatus, error)
	ListUserInvoices(ctx context.Context, userID int64) ([]domain.Invoice, error)
}

// FiatInvoiceRequest holds validated input for a fiat-priced invoice.
type FiatInvoiceRequest struct {
	UserID       int64
	Network      string
	FiatAmount   decimal.Decimal
	FiatCurrency string
	ExpiresAt    *time.Time
}

// CryptoInvoiceRequest holds validated input for a crypto-priced invoice.
type CryptoInvoiceRequest struct {
	UserID          int64
	Network         string
	CryptoAmount    decimal.Decimal
	CryptoCurrency  string
	ContractAddress *string
	ExpiresAt       *time.Time
}

// PaymentReconciler advances pending invoices using blockchain data.
type PaymentReconciler interface {
	CheckInvoiceStatus(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
}

// TransferService sends funds out of a provisioned wallet. Never retried automatically.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (string, error)
}

// TransferRequest holds validated input for an outgoing transfer.
type TransferRequest struct {
	UserID    int64
	Network   string
	ToAddress string
	Amount    decimal.Decimal
	Options   TransferOptions
}

// RateService reads and stores exchange rates on behalf of the external rate feed.
type RateService interface {
	GetRate(ctx context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error)
	UpsertRate(ctx context.Context, req RateUpsertRequest) (*domain.ExchangeRate, error)
}

// RateUpsertRequest holds a rate snapshot. RevertedRate defaults to 1/Rate.
type RateUpsertRequest struct {
	FiatCurrency   string
	CryptoCurrency string
	Rate           decimal.Decimal
	RevertedRate   *decimal.Decimal
}
