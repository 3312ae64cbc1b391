package ports

import (
	"context"

	"crypto-payments/internal/core/domain"

	"github.com/shopspring/decimal"
)

// BlockchainReader finds the on-chain payment of an invoice.
type BlockchainReader interface {
	// FindMatchingTransaction returns at most one candidate transaction believed to
	// settle the invoice, or (nil, nil). Only Hash and Network need to be set.
	FindMatchingTransaction(ctx context.Context, wallet *domain.Wallet, invoice *domain.Invoice) (*domain.Transaction, error)
}

// TransferOptions carries network-specific transfer parameters (gas limit, fee, ...).
type TransferOptions map[string]string

// NetworkClient generates wallets and moves funds on one network.
type NetworkClient interface {
	GenerateWallet(ctx context.Context) (*domain.WalletCredentials, error)
	// NetworkName returns the settlement currency of the network (e.g. ETH).
	NetworkName() string
	TransferAmount(ctx context.Context, privateKey string, toAddress string, amount decimal.Decimal, opts TransferOptions) (string, error)
}

// SecurityProvider encrypts private key material at rest.
type SecurityProvider interface {
	EncryptBytes(plaintext []byte) ([]byte, error)
	// DecryptBytes fails when the blob was not produced with the same key.
	DecryptBytes(ciphertext []byte) ([]byte, error)
}

// NetworkClients maps a network identifier to its client.
type NetworkClients map[string]NetworkClient

// BlockchainReaders maps a network identifier to its reader.
type BlockchainReaders map[string]BlockchainReader
