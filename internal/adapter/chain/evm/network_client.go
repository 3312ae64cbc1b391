package evm

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	nativeTransferGas uint64 = 21000
	tokenTransferGas  uint64 = 65000
)

// Transfer option keys understood by NetworkClient.TransferAmount.
const (
	OptGasLimit        = "gas_limit"
	OptGasPrice        = "gas_price" // wei
	OptContractAddress = "contract_address"
	OptDecimals        = "decimals"
)

// NetworkClient implements ports.NetworkClient for an EVM chain.
type NetworkClient struct {
	backend  Backend
	chainID  *big.Int
	currency string
	log      zerolog.Logger
}

// NewNetworkClient creates a client for the chain identified by chainID.
// currency is the settlement currency reported by NetworkName.
func NewNetworkClient(backend Backend, chainID int64, currency string, log zerolog.Logger) *NetworkClient {
	return &NetworkClient{
		backend:  backend,
		chainID:  big.NewInt(chainID),
		currency: currency,
		log:      log,
	}
}

// GenerateWallet creates a fresh secp256k1 key pair.
// The private key is returned hex-encoded without the 0x prefix.
func (c *NetworkClient) GenerateWallet(_ context.Context) (*domain.WalletCredentials, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return &domain.WalletCredentials{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: []byte(hex.EncodeToString(crypto.FromECDSA(key))),
	}, nil
}

func (c *NetworkClient) NetworkName() string {
	return c.currency
}

// TransferAmount signs and broadcasts a legacy transaction moving amount to toAddress.
// With OptContractAddress set, amount is sent as an ERC-20 transfer on that contract.
func (c *NetworkClient) TransferAmount(ctx context.Context, privateKey string, toAddress string, amount decimal.Decimal, opts ports.TransferOptions) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	if !common.IsHexAddress(toAddress) {
		return "", fmt.Errorf("invalid recipient address %q", toAddress)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress(toAddress)

	decimals := EtherDecimals
	if v, ok := opts[OptDecimals]; ok {
		d, err := strconv.ParseInt(v, 10, 32)
		if err != nil || d < 0 {
			return "", fmt.Errorf("invalid %s option %q", OptDecimals, v)
		}
		decimals = int32(d)
	}
	units, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return "", err
	}

	target, value, data, gas := to, units, []byte(nil), nativeTransferGas
	if contract, ok := opts[OptContractAddress]; ok {
		if !common.IsHexAddress(contract) {
			return "", fmt.Errorf("invalid contract address %q", contract)
		}
		target, value, data, gas = common.HexToAddress(contract), new(big.Int), encodeTokenTransfer(to, units), tokenTransferGas
	}
	if v, ok := opts[OptGasLimit]; ok {
		if gas, err = strconv.ParseUint(v, 10, 64); err != nil {
			return "", fmt.Errorf("invalid %s option %q", OptGasLimit, v)
		}
	}

	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.gasPrice(ctx, opts)
	if err != nil {
		return "", err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &target,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash().Hex()
	c.log.Info().
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Str("amount", amount.String()).
		Str("tx_hash", hash).
		Msg("EVM transfer broadcast")

	return hash, nil
}

func (c *NetworkClient) gasPrice(ctx context.Context, opts ports.TransferOptions) (*big.Int, error) {
	if v, ok := opts[OptGasPrice]; ok {
		price, ok := new(big.Int).SetString(v, 10)
		if !ok || price.Sign() < 0 {
			return nil, fmt.Errorf("invalid %s option %q", OptGasPrice, v)
		}
		return price, nil
	}

	price, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return price, nil
}
