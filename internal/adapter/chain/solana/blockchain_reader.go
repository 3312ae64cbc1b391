package solana

import (
	"context"
	"fmt"
	"math/big"

	"crypto-payments/internal/core/domain"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultSignatureLimit = 50

var maxTransactionVersion uint64

// History is the part of the Solana JSON-RPC client used by BlockchainReader.
// *rpc.Client satisfies it.
type History interface {
	GetSignaturesForAddressWithOpts(ctx context.Context, account sol.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig sol.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

var _ History = (*rpc.Client)(nil)

// BlockchainReader implements ports.BlockchainReader from finalized transaction history.
//
// Native invoices match a transaction that raised the wallet's lamport balance by at least
// the crypto amount. Token invoices (ContractAddress is the mint) look at the wallet's
// associated token account and compare token balances instead.
type BlockchainReader struct {
	rpc     History
	network string
	limit   int
	log     zerolog.Logger
}

// NewBlockchainReader creates a reader inspecting the last limit signatures (0 means 50).
func NewBlockchainReader(client History, network string, limit int, log zerolog.Logger) *BlockchainReader {
	if limit <= 0 {
		limit = defaultSignatureLimit
	}
	return &BlockchainReader{
		rpc:     client,
		network: network,
		limit:   limit,
		log:     log,
	}
}

// FindMatchingTransaction returns the newest matching transaction, or (nil, nil).
func (r *BlockchainReader) FindMatchingTransaction(ctx context.Context, wallet *domain.Wallet, invoice *domain.Invoice) (*domain.Transaction, error) {
	owner, err := sol.PublicKeyFromBase58(wallet.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", wallet.Address, err)
	}

	account := owner
	var mint *sol.PublicKey
	if invoice.ContractAddress != nil {
		m, err := sol.PublicKeyFromBase58(*invoice.ContractAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid mint address %q: %w", *invoice.ContractAddress, err)
		}
		mint = &m
		if account, _, err = sol.FindAssociatedTokenAddress(owner, m); err != nil {
			return nil, fmt.Errorf("derive token account: %w", err)
		}
	}

	limit := r.limit
	sigs, err := r.rpc.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, fmt.Errorf("get signatures: %w", err)
	}

	for _, s := range sigs {
		if s.BlockTime != nil && s.BlockTime.Time().Before(invoice.CreatedAt) {
			break
		}
		if s.Err != nil {
			continue
		}

		out, err := r.rpc.GetTransaction(ctx, s.Signature, &rpc.GetTransactionOpts{
			Encoding:                       sol.EncodingBase64,
			Commitment:                     rpc.CommitmentFinalized,
			MaxSupportedTransactionVersion: &maxTransactionVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("get transaction %s: %w", s.Signature, err)
		}
		if out == nil || out.Meta == nil || out.Meta.Err != nil {
			continue
		}

		var received decimal.Decimal
		if mint == nil {
			if received, err = lamportCredit(out, owner); err != nil {
				r.log.Warn().Err(err).Str("signature", s.Signature.String()).Msg("skipping undecodable transaction")
				continue
			}
		} else {
			received = tokenCredit(out.Meta, owner, *mint)
		}

		if received.GreaterThanOrEqual(invoice.CryptoAmount) {
			r.log.Debug().
				Str("invoice_id", invoice.ID.String()).
				Str("signature", s.Signature.String()).
				Str("received", received.String()).
				Msg("Matching transaction found")
			return &domain.Transaction{
				InvoiceID: invoice.ID,
				Hash:      s.Signature.String(),
				Network:   r.network,
			}, nil
		}
	}

	return nil, nil
}

// lamportCredit returns the SOL balance increase of owner in the transaction.
func lamportCredit(out *rpc.GetTransactionResult, owner sol.PublicKey) (decimal.Decimal, error) {
	if out.Transaction == nil {
		return decimal.Zero, fmt.Errorf("transaction body missing")
	}
	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode transaction: %w", err)
	}

	pre, post := out.Meta.PreBalances, out.Meta.PostBalances
	for i, key := range tx.Message.AccountKeys {
		if !key.Equals(owner) || i >= len(pre) || i >= len(post) {
			continue
		}
		if post[i] <= pre[i] {
			return decimal.Zero, nil
		}
		return decimal.NewFromBigInt(new(big.Int).SetUint64(post[i]-pre[i]), -LamportDecimals), nil
	}
	return decimal.Zero, nil
}

// tokenCredit returns the increase of owner's mint balance in the transaction.
func tokenCredit(meta *rpc.TransactionMeta, owner, mint sol.PublicKey) decimal.Decimal {
	sum := func(balances []rpc.TokenBalance) decimal.Decimal {
		total := decimal.Zero
		for _, b := range balances {
			if b.Owner == nil || !b.Owner.Equals(owner) || !b.Mint.Equals(mint) || b.UiTokenAmount == nil {
				continue
			}
			amount, err := decimal.NewFromString(b.UiTokenAmount.Amount)
			if err != nil {
				continue
			}
			total = total.Add(amount.Shift(-int32(b.UiTokenAmount.Decimals)))
		}
		return total
	}

	credit := sum(meta.PostTokenBalances).Sub(sum(meta.PreTokenBalances))
	if credit.IsNegative() {
		return decimal.Zero
	}
	return credit
}
