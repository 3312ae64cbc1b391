package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crypto-payments/internal/core/domain"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	queried []sol.PublicKey
	sigs    []*rpc.TransactionSignature
	txs     map[sol.Signature]*rpc.GetTransactionResult
	sigErr  error
	fetched []sol.Signature
}

func (f *fakeHistory) GetSignaturesForAddressWithOpts(_ context.Context, account sol.PublicKey, _ *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	f.queried = append(f.queried, account)
	return f.sigs, f.sigErr
}

func (f *fakeHistory) GetTransaction(_ context.Context, sig sol.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.fetched = append(f.fetched, sig)
	out, ok := f.txs[sig]
	if !ok {
		return nil, errors.New("not found")
	}
	return out, nil
}

func blockTime(t time.Time) *sol.UnixTimeSeconds {
	ts := sol.UnixTimeSeconds(t.Unix())
	return &ts
}

// paymentTx builds a signed system transfer from a fresh payer to recipient.
func paymentTx(t *testing.T, recipient sol.PublicKey, lamports uint64) (*rpc.TransactionResultEnvelope, sol.Signature) {
	t.Helper()
	payer := sol.NewWallet()
	tx, err := sol.NewTransaction(
		[]sol.Instruction{system.NewTransferInstruction(lamports, payer.PublicKey(), recipient).Build()},
		sol.Hash{9},
		sol.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(pub sol.PublicKey) *sol.PrivateKey {
		if pub.Equals(payer.PublicKey()) {
			return &payer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	payload, err := json.Marshal([]string{base64.StdEncoding.EncodeToString(raw), "base64"})
	require.NoError(t, err)

	var env rpc.TransactionResultEnvelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return &env, tx.Signatures[0]
}

// nativeResult wraps a payment with balances where the recipient (account index 1) gains lamports.
func nativeResult(env *rpc.TransactionResultEnvelope, lamports uint64) *rpc.GetTransactionResult {
	return &rpc.GetTransactionResult{
		Transaction: env,
		Meta: &rpc.TransactionMeta{
			PreBalances:  []uint64{10_000_000_000, 1_000, 1},
			PostBalances: []uint64{10_000_000_000 - lamports - 5000, 1_000 + lamports, 1},
		},
	}
}

func TestBlockchainReader_Native(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	owner := sol.NewWallet().PublicKey()
	wallet := &domain.Wallet{Address: owner.String(), Network: "solana"}
	invoice := &domain.Invoice{
		ID:           uuid.New(),
		CreatedAt:    created,
		CryptoAmount: decimal.RequireFromString("0.5"),
		Network:      "solana",
	}

	shortEnv, shortSig := paymentTx(t, owner, 400_000_000)
	fullEnv, fullSig := paymentTx(t, owner, 500_000_000)
	oldEnv, oldSig := paymentTx(t, owner, 900_000_000)

	t.Run("finds the covering payment", func(t *testing.T) {
		history := &fakeHistory{
			sigs: []*rpc.TransactionSignature{
				{Signature: shortSig, BlockTime: blockTime(created.Add(2 * time.Minute))},
				{Signature: fullSig, BlockTime: blockTime(created.Add(time.Minute))},
			},
			txs: map[sol.Signature]*rpc.GetTransactionResult{
				shortSig: nativeResult(shortEnv, 400_000_000),
				fullSig:  nativeResult(fullEnv, 500_000_000),
			},
		}
		reader := NewBlockchainReader(history, "solana", 0, zerolog.Nop())

		tx, err := reader.FindMatchingTransaction(context.Background(), wallet, invoice)
		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, fullSig.String(), tx.Hash)
		assert.Equal(t, "solana", tx.Network)
		assert.Equal(t, invoice.ID, tx.InvoiceID)
		assert.Equal(t, []sol.PublicKey{owner}, history.queried)
	})

	t.Run("ignores failed and older transactions", func(t *testing.T) {
		history := &fakeHistory{
			sigs: []*rpc.TransactionSignature{
				{Signature: fullSig, BlockTime: blockTime(created.Add(time.Minute)), Err: map[string]interface{}{"InstructionError": 1}},
				{Signature: oldSig, BlockTime: blockTime(created.Add(-time.Minute))},
			},
			txs: map[sol.Signature]*rpc.GetTransactionResult{
				fullSig: nativeResult(fullEnv, 500_000_000),
				oldSig:  nativeResult(oldEnv, 900_000_000),
			},
		}
		reader := NewBlockchainReader(history, "solana", 10, zerolog.Nop())

		tx, err := reader.FindMatchingTransaction(context.Background(), wallet, invoice)
		require.NoError(t, err)
		assert.Nil(t, tx)
		assert.Empty(t, history.fetched)
	})

	t.Run("rpc failure surfaces", func(t *testing.T) {
		reader := NewBlockchainReader(&fakeHistory{sigErr: errors.New("429 too many requests")}, "solana", 10, zerolog.Nop())
		_, err := reader.FindMatchingTransaction(context.Background(), wallet, invoice)
		assert.ErrorContains(t, err, "429")
	})

	t.Run("invalid wallet address", func(t *testing.T) {
		reader := NewBlockchainReader(&fakeHistory{}, "solana", 10, zerolog.Nop())
		_, err := reader.FindMatchingTransaction(context.Background(), &domain.Wallet{Address: "0xabc"}, invoice)
		assert.Error(t, err)
	})
}

func TestBlockchainReader_Token(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	owner := sol.NewWallet().PublicKey()
	mint := sol.NewWallet().PublicKey()
	mintStr := mint.String()
	ata, _, err := sol.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	invoice := &domain.Invoice{
		ID:              uuid.New(),
		CreatedAt:       created,
		CryptoAmount:    decimal.RequireFromString("12.5"),
		ContractAddress: &mintStr,
		Network:         "solana",
	}
	sig := sol.Signature{7}
	balance := func(amount string) rpc.TokenBalance {
		return rpc.TokenBalance{
			AccountIndex:  1,
			Owner:         &owner,
			Mint:          mint,
			UiTokenAmount: &rpc.UiTokenAmount{Amount: amount, Decimals: 6},
		}
	}

	history := &fakeHistory{
		sigs: []*rpc.TransactionSignature{{Signature: sig, BlockTime: blockTime(created.Add(time.Minute))}},
		txs: map[sol.Signature]*rpc.GetTransactionResult{
			sig: {Meta: &rpc.TransactionMeta{
				PreTokenBalances:  []rpc.TokenBalance{balance("1000000")},
				PostTokenBalances: []rpc.TokenBalance{balance("13500000")},
			}},
		},
	}
	reader := NewBlockchainReader(history, "solana", 10, zerolog.Nop())

	tx, err := reader.FindMatchingTransaction(context.Background(), &domain.Wallet{Address: owner.String()}, invoice)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, sig.String(), tx.Hash)
	assert.Equal(t, []sol.PublicKey{ata}, history.queried, "token payments are looked up on the associated token account")
}

func TestTokenCredit(t *testing.T) {
	owner := sol.NewWallet().PublicKey()
	other := sol.NewWallet().PublicKey()
	mint := sol.NewWallet().PublicKey()
	bal := func(o sol.PublicKey, m sol.PublicKey, amount string) rpc.TokenBalance {
		return rpc.TokenBalance{Owner: &o, Mint: m, UiTokenAmount: &rpc.UiTokenAmount{Amount: amount, Decimals: 2}}
	}

	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{bal(owner, mint, "100"), bal(other, mint, "5000")},
		PostTokenBalances: []rpc.TokenBalance{
			bal(owner, mint, "350"),
			bal(other, mint, "4750"),
			bal(owner, other, "999999"),
		},
	}

	assert.Equal(t, "2.5", tokenCredit(meta, owner, mint).String())
	assert.True(t, tokenCredit(meta, other, mint).IsZero(), "a debit is not a credit")
}
