package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the part of an Ethereum JSON-RPC client used by this package.
// *ethclient.Client satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// transferSelector is the ERC-20 transfer(address,uint256) method id.
var transferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// encodeTokenTransfer builds ERC-20 transfer calldata.
func encodeTokenTransfer(to common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}

// decodeTokenTransfer parses ERC-20 transfer calldata. ok is false for any other call.
func decodeTokenTransfer(data []byte) (to common.Address, amount *big.Int, ok bool) {
	if len(data) != 4+32+32 {
		return common.Address{}, nil, false
	}
	for i, b := range transferSelector {
		if data[i] != b {
			return common.Address{}, nil, false
		}
	}
	return common.BytesToAddress(data[4:36]), new(big.Int).SetBytes(data[36:68]), true
}
