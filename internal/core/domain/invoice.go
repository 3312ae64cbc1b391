package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusExpired InvoiceStatus = "EXPIRED"
)

// IsTerminal returns true if no further transition is allowed.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusExpired
}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusExpired:
		return true
	}
	return false
}

// Invoice is a single payment request settled on one network.
// FiatAmount and FiatCurrency are set only for fiat-priced invoices;
// ContractAddress only for token payments.
type Invoice struct {
	ID              uuid.UUID        `json:"id"`
	UserID          int64            `json:"user_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty"`
	Status          InvoiceStatus    `json:"status"`
	FiatAmount      *decimal.Decimal `json:"fiat_amount,omitempty"`
	FiatCurrency    *string          `json:"fiat_currency,omitempty"`
	CryptoAmount    decimal.Decimal  `json:"crypto_amount"`
	CryptoCurrency  string           `json:"crypto_currency"`
	ContractAddress *string          `json:"contract_address,omitempty"`
	Network         string           `json:"network"`
}

// IsFiat returns true if the invoice was priced in fiat.
func (i *Invoice) IsFiat() bool {
	return i.FiatAmount != nil && i.FiatCurrency != nil
}

// IsExpired reports whether the expiration timestamp is set and strictly before now.
func (i *Invoice) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// InvoiceCursor is a position in the (created_at, id) ordering of invoices.
type InvoiceCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorOf returns the position of inv.
func CursorOf(inv Invoice) InvoiceCursor {
	return InvoiceCursor{CreatedAt: inv.CreatedAt, ID: inv.ID}
}
