package evm

import (
	"context"
	"fmt"
	"math/big"

	"crypto-payments/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

const defaultLookbackBlocks uint64 = 100

// BlockchainReader implements ports.BlockchainReader by scanning recent blocks
// for a transfer to the invoice wallet.
//
// Native invoices match a transaction sent to the wallet whose value covers the
// crypto amount. Token invoices (ContractAddress set) match an ERC-20 transfer call
// on that contract crediting the wallet. Blocks older than the invoice are ignored.
type BlockchainReader struct {
	backend       Backend
	network       string
	lookback      uint64
	tokenDecimals int32
	log           zerolog.Logger
}

// NewBlockchainReader creates a reader for network. A zero lookback scans the last 100 blocks;
// zero tokenDecimals means 18.
func NewBlockchainReader(backend Backend, network string, lookback uint64, tokenDecimals int32, log zerolog.Logger) *BlockchainReader {
	if lookback == 0 {
		lookback = defaultLookbackBlocks
	}
	if tokenDecimals == 0 {
		tokenDecimals = EtherDecimals
	}
	return &BlockchainReader{
		backend:       backend,
		network:       network,
		lookback:      lookback,
		tokenDecimals: tokenDecimals,
		log:           log,
	}
}

// FindMatchingTransaction returns the newest matching transaction, or (nil, nil).
func (r *BlockchainReader) FindMatchingTransaction(ctx context.Context, wallet *domain.Wallet, invoice *domain.Invoice) (*domain.Transaction, error) {
	if !common.IsHexAddress(wallet.Address) {
		return nil, fmt.Errorf("invalid wallet address %q", wallet.Address)
	}
	recipient := common.HexToAddress(wallet.Address)

	match, err := r.matcher(recipient, invoice)
	if err != nil {
		return nil, err
	}

	head, err := r.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get block number: %w", err)
	}

	var oldest uint64
	if head+1 > r.lookback {
		oldest = head + 1 - r.lookback
	}
	createdAt := uint64(invoice.CreatedAt.Unix())

	for n := head; ; n-- {
		block, err := r.backend.BlockByNumber(ctx, new(big.Int).SetUint64(n))
		if err != nil {
			return nil, fmt.Errorf("get block %d: %w", n, err)
		}
		if block == nil || block.Time() < createdAt {
			break
		}

		for _, tx := range block.Transactions() {
			if match(tx) {
				r.log.Debug().
					Str("invoice_id", invoice.ID.String()).
					Str("tx_hash", tx.Hash().Hex()).
					Uint64("block", n).
					Msg("Matching transaction found")
				return &domain.Transaction{
					InvoiceID: invoice.ID,
					Hash:      tx.Hash().Hex(),
					Network:   r.network,
				}, nil
			}
		}

		if n == oldest {
			break
		}
	}

	return nil, nil
}

func (r *BlockchainReader) matcher(recipient common.Address, invoice *domain.Invoice) (func(*types.Transaction) bool, error) {
	if invoice.ContractAddress == nil {
		want, err := MinimumBaseUnits(invoice.CryptoAmount, EtherDecimals)
		if err != nil {
			return nil, err
		}
		return func(tx *types.Transaction) bool {
			return tx.To() != nil && *tx.To() == recipient && tx.Value().Cmp(want) >= 0
		}, nil
	}

	if !common.IsHexAddress(*invoice.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", *invoice.ContractAddress)
	}
	contract := common.HexToAddress(*invoice.ContractAddress)
	want, err := MinimumBaseUnits(invoice.CryptoAmount, r.tokenDecimals)
	if err != nil {
		return nil, err
	}
	return func(tx *types.Transaction) bool {
		if tx.To() == nil || *tx.To() != contract {
			return false
		}
		to, amount, ok := decodeTokenTransfer(tx.Data())
		return ok && to == recipient && amount.Cmp(want) >= 0
	}, nil
}
