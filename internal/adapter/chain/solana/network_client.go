// Package solana implements the Solana network client.
package solana

import (
	"context"
	"fmt"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LamportDecimals is the number of decimals of SOL (lamports per SOL = 10^9).
const LamportDecimals int32 = 9

// RPC is the part of the Solana JSON-RPC client used by NetworkClient.
// *rpc.Client satisfies it.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, transaction *sol.Transaction) (sol.Signature, error)
}

var _ RPC = (*rpc.Client)(nil)

// NetworkClient implements ports.NetworkClient for Solana native SOL transfers.
type NetworkClient struct {
	rpc      RPC
	currency string
	log      zerolog.Logger
}

// NewNetworkClient creates a client. currency is reported by NetworkName (usually SOL).
func NewNetworkClient(client RPC, currency string, log zerolog.Logger) *NetworkClient {
	return &NetworkClient{
		rpc:      client,
		currency: currency,
		log:      log,
	}
}

// Dial returns a JSON-RPC client for the endpoint.
func Dial(rpcURL string) *rpc.Client {
	return rpc.New(rpcURL)
}

// GenerateWallet creates a fresh ed25519 key pair.
// The private key is returned base58-encoded.
func (c *NetworkClient) GenerateWallet(_ context.Context) (*domain.WalletCredentials, error) {
	key, err := sol.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return &domain.WalletCredentials{
		Address:    key.PublicKey().String(),
		PrivateKey: []byte(key.String()),
	}, nil
}

func (c *NetworkClient) NetworkName() string {
	return c.currency
}

// TransferAmount signs and sends a system transfer of amount SOL to toAddress.
func (c *NetworkClient) TransferAmount(ctx context.Context, privateKey string, toAddress string, amount decimal.Decimal, _ ports.TransferOptions) (string, error) {
	key, err := sol.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	to, err := sol.PublicKeyFromBase58(toAddress)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	lamports, err := toLamports(amount)
	if err != nil {
		return "", err
	}
	from := key.PublicKey()

	latest, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := sol.NewTransaction(
		[]sol.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		latest.Value.Blockhash,
		sol.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	if _, err := tx.Sign(func(pub sol.PublicKey) *sol.PrivateKey {
		if pub.Equals(from) {
			return &key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	c.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("amount", amount.String()).
		Str("tx_hash", sig.String()).
		Msg("Solana transfer sent")

	return sig.String(), nil
}

func toLamports(amount decimal.Decimal) (uint64, error) {
	shifted := amount.Shift(LamportDecimals)
	if amount.IsNegative() || !shifted.IsInteger() {
		return 0, fmt.Errorf("invalid SOL amount %s", amount)
	}
	v := shifted.BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("SOL amount %s out of range", amount)
	}
	return v.Uint64(), nil
}
