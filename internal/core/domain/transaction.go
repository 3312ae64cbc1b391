package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is an on-chain payment event applied to an invoice.
// (Hash, Network) is unique across all stored transactions.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Hash      string    `json:"hash"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
}
