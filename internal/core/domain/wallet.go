package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a blockchain address plus its encrypted private key,
// provisioned at most once per (user, network). Address and key are immutable.
type Wallet struct {
	ID                  uuid.UUID `json:"id"`
	UserID              int64     `json:"user_id"`
	Network             string    `json:"network"`
	Address             string    `json:"address"`
	PrivateKeyEncrypted []byte    `json:"-"` // Opaque blob from the security provider, never expose
	CreatedAt           time.Time `json:"created_at"`
}

// WalletCredentials is freshly generated key material returned by a network client.
type WalletCredentials struct {
	Address    string
	PrivateKey []byte // Raw key, must be encrypted before it is stored
}
