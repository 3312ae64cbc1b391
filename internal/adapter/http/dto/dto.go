package dto

import (
	"time"

	"crypto-payments/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Amounts are exchanged as decimal strings ("0.05"); JSON numbers are accepted on input.

// FiatInvoiceRequest is the request body for a fiat-priced invoice.
type FiatInvoiceRequest struct {
	UserID       int64           `json:"user_id" binding:"required"`
	Network      string          `json:"network" binding:"required,max=32,safe_id"`
	FiatAmount   decimal.Decimal `json:"fiat_amount"`
	FiatCurrency string          `json:"fiat_currency" binding:"required,currency_code"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

// CryptoInvoiceRequest is the request body for a crypto-priced invoice.
type CryptoInvoiceRequest struct {
	UserID          int64           `json:"user_id" binding:"required"`
	Network         string          `json:"network" binding:"required,max=32,safe_id"`
	CryptoAmount    decimal.Decimal `json:"crypto_amount"`
	CryptoCurrency  string          `json:"crypto_currency" binding:"required,currency_code"`
	ContractAddress *string         `json:"contract_address,omitempty" binding:"omitempty,max=128,alphanum"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

// TransferRequest is the request body for an outgoing transfer.
type TransferRequest struct {
	UserID    int64             `json:"user_id" binding:"required"`
	Network   string            `json:"network" binding:"required,max=32,safe_id"`
	ToAddress string            `json:"to_address" binding:"required,max=128,alphanum"`
	Amount    decimal.Decimal   `json:"amount"`
	Options   map[string]string `json:"options,omitempty"`
}

// RateUpsertRequest is the request body pushed by the rate feed.
type RateUpsertRequest struct {
	FiatCurrency   string           `json:"fiat_currency" binding:"required,currency_code"`
	CryptoCurrency string           `json:"crypto_currency" binding:"required,currency_code"`
	Rate           decimal.Decimal  `json:"rate"`
	RevertedRate   *decimal.Decimal `json:"reverted_rate,omitempty"`
}

// InvoiceResponse is the public view of an invoice.
type InvoiceResponse struct {
	ID              string  `json:"id"`
	UserID          int64   `json:"user_id"`
	Status          string  `json:"status"`
	Network         string  `json:"network"`
	CryptoAmount    string  `json:"crypto_amount"`
	CryptoCurrency  string  `json:"crypto_currency"`
	FiatAmount      *string `json:"fiat_amount,omitempty"`
	FiatCurrency    *string `json:"fiat_currency,omitempty"`
	ContractAddress *string `json:"contract_address,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	ExpiresAt       *string `json:"expires_at,omitempty"`
}

// InvoiceStatusResponse is the response for a stored-status lookup.
type InvoiceStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InvoiceListResponse wraps a user's invoices.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Total int               `json:"total"`
}

// WalletResponse exposes the address of a wallet, never its key.
type WalletResponse struct {
	UserID    int64  `json:"user_id"`
	Network   string `json:"network"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// TransferResponse carries the network's transaction hash.
type TransferResponse struct {
	TxHash string `json:"tx_hash"`
}

// RateResponse is the public view of an exchange rate.
type RateResponse struct {
	FiatCurrency   string `json:"fiat_currency"`
	CryptoCurrency string `json:"crypto_currency"`
	Rate           string `json:"rate"`
	RevertedRate   string `json:"reverted_rate"`
	UpdatedAt      string `json:"updated_at"`
}

// NewInvoiceResponse converts a domain invoice.
func NewInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              inv.ID.String(),
		UserID:          inv.UserID,
		Status:          string(inv.Status),
		Network:         inv.Network,
		CryptoAmount:    inv.CryptoAmount.String(),
		CryptoCurrency:  inv.CryptoCurrency,
		FiatCurrency:    inv.FiatCurrency,
		ContractAddress: inv.ContractAddress,
		CreatedAt:       formatTime(inv.CreatedAt),
		UpdatedAt:       formatTime(inv.UpdatedAt),
	}
	if inv.FiatAmount != nil {
		s := inv.FiatAmount.String()
		resp.FiatAmount = &s
	}
	if inv.ExpiresAt != nil {
		s := formatTime(*inv.ExpiresAt)
		resp.ExpiresAt = &s
	}
	return resp
}

// NewWalletResponse converts a domain wallet.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		UserID:    w.UserID,
		Network:   w.Network,
		Address:   w.Address,
		CreatedAt: formatTime(w.CreatedAt),
	}
}

// NewRateResponse converts a domain exchange rate.
func NewRateResponse(r *domain.ExchangeRate) RateResponse {
	return RateResponse{
		FiatCurrency:   r.FiatCurrency,
		CryptoCurrency: r.CryptoCurrency,
		Rate:           r.Rate.String(),
		RevertedRate:   r.RevertedRate.String(),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
