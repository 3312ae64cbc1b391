package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crypto-payments/internal/adapter/storage/memory"
	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNetworkClient hands out a distinct address per generated wallet.
type stubNetworkClient struct {
	currency  string
	generated atomic.Int64
}

func (c *stubNetworkClient) GenerateWallet(context.Context) (*domain.WalletCredentials, error) {
	n := c.generated.Add(1)
	return &domain.WalletCredentials{
		Address:    fmt.Sprintf("addr-%d", n),
		PrivateKey: []byte(fmt.Sprintf("key-%d", n)),
	}, nil
}

func (c *stubNetworkClient) NetworkName() string { return c.currency }

func (c *stubNetworkClient) TransferAmount(_ context.Context, privateKey, toAddress string, amount decimal.Decimal, _ ports.TransferOptions) (string, error) {
	return fmt.Sprintf("%s->%s:%s", privateKey, toAddress, amount), nil
}

// stubReader reports a configured on-chain hash per invoice.
type stubReader struct {
	mu      sync.Mutex
	network string
	hashes  map[uuid.UUID]string
	calls   atomic.Int64
}

func (r *stubReader) set(invoiceID uuid.UUID, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes[invoiceID] = hash
}

func (r *stubReader) FindMatchingTransaction(_ context.Context, _ *domain.Wallet, invoice *domain.Invoice) (*domain.Transaction, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	hash, ok := r.hashes[invoice.ID]
	if !ok {
		return nil, nil
	}
	return &domain.Transaction{Hash: hash, Network: r.network}, nil
}

type engine struct {
	wallets      *memory.WalletRepo
	invoices     *memory.InvoiceRepo
	transactions *memory.TransactionRepo
	rates        *memory.ExchangeRateRepo
	reader       *stubReader
	provisioner  *WalletServiceImpl
	factory      *InvoiceServiceImpl
	reconciler   *ReconcilerServiceImpl
	transfers    *TransferServiceImpl
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	security, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	e := &engine{
		wallets:      memory.NewWalletRepo(),
		invoices:     memory.NewInvoiceRepo(),
		transactions: memory.NewTransactionRepo(),
		rates:        memory.NewExchangeRateRepo(),
		reader:       &stubReader{network: "bitcoin", hashes: make(map[uuid.UUID]string)},
	}
	clients := ports.NetworkClients{
		"bitcoin": &stubNetworkClient{currency: "BTC"},
		"erc20":   &stubNetworkClient{currency: "ETH"},
	}
	log := zerolog.Nop()
	e.provisioner = NewWalletService(e.wallets, clients, security, log)
	e.factory = NewInvoiceService(e.invoices, e.rates, e.provisioner, clients, log)
	e.reconciler = NewReconcilerService(e.invoices, e.wallets, e.transactions, ports.BlockchainReaders{"bitcoin": e.reader}, log)
	e.transfers = NewTransferService(e.provisioner, clients, security, log)
	return e
}

func (e *engine) cryptoInvoice(t *testing.T, userID int64, expiresAt *time.Time) *domain.Invoice {
	t.Helper()
	inv, err := e.factory.CreateCryptoInvoice(context.Background(), ports.CryptoInvoiceRequest{
		UserID:         userID,
		Network:        "bitcoin",
		CryptoAmount:   decimal.RequireFromString("1.0"),
		CryptoCurrency: "BTC",
		ExpiresAt:      expiresAt,
	})
	require.NoError(t, err)
	return inv
}

func TestScenario_IdempotentProvisioning(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	first, err := e.provisioner.GetOrCreateWallet(ctx, 1, "bitcoin")
	require.NoError(t, err)
	second, err := e.provisioner.GetOrCreateWallet(ctx, 1, "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PrivateKeyEncrypted, second.PrivateKeyEncrypted)
}

func TestScenario_ConcurrentProvisioningPersistsOneWallet(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	const n = 32
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := e.provisioner.GetOrCreateWallet(ctx, 77, "erc20")
			if assert.NoError(t, err) {
				ids[i] = w.ID
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, e.wallets.Count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestScenario_HappyPath(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	inv := e.cryptoInvoice(t, 1, nil)
	e.reader.set(inv.ID, "0xabc")

	got, err := e.reconciler.CheckInvoiceStatus(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, got.Status)

	txs, err := e.transactions.GetByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0xabc", txs[0].Hash)

	again, err := e.reconciler.CheckInvoiceStatus(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, again.Status)
	assert.Equal(t, got.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, 1, e.transactions.Count())
}

func TestScenario_ExpiredBeforePayment(t *testing.T) {
	e := newEngine(t)

	past := time.Now().UTC().Add(-time.Second)
	inv := e.cryptoInvoice(t, 1, &past)

	got, err := e.reconciler.CheckInvoiceStatus(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusExpired, got.Status)
}

func TestScenario_DuplicateTransactionGuard(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	a := e.cryptoInvoice(t, 1, nil)
	b := e.cryptoInvoice(t, 2, nil)

	_, err := e.transactions.Save(ctx, &domain.Transaction{InvoiceID: a.ID, Hash: "0xdef", Network: "bitcoin"})
	require.NoError(t, err)
	e.reader.set(b.ID, "0xdef")

	got, err := e.reconciler.CheckInvoiceStatus(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, got.Status)

	txs, err := e.transactions.GetByInvoice(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestScenario_RateConversionExactness(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.rates.Save(ctx, &domain.ExchangeRate{
		FiatCurrency:   "USD",
		CryptoCurrency: "ETH",
		Rate:           decimal.NewFromInt(2000),
		RevertedRate:   decimal.RequireFromString("0.0005"),
	})
	require.NoError(t, err)

	inv, err := e.factory.CreateFiatInvoice(ctx, ports.FiatInvoiceRequest{
		UserID:       1,
		Network:      "erc20",
		FiatAmount:   decimal.NewFromInt(100),
		FiatCurrency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.05", inv.CryptoAmount.String())
}

func TestScenario_ConcurrentReconciliationPaysOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	inv := e.cryptoInvoice(t, 1, nil)
	e.reader.set(inv.ID, "0xrace")

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.reconciler.CheckInvoiceStatus(ctx, inv.ID)
			if assert.NoError(t, err) {
				assert.Equal(t, domain.InvoiceStatusPaid, got.Status)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, e.transactions.Count())
	stored, err := e.invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
}

func TestScenario_TerminalStateIsMonotonic(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Minute)
	inv := e.cryptoInvoice(t, 1, &past)

	expired, err := e.reconciler.CheckInvoiceStatus(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusExpired, expired.Status)

	// A payment showing up afterwards does not reopen the invoice.
	e.reader.set(inv.ID, "0xlate")
	calls := e.reader.calls.Load()

	again, err := e.reconciler.CheckInvoiceStatus(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusExpired, again.Status)
	assert.Equal(t, calls, e.reader.calls.Load())
	assert.Equal(t, 0, e.transactions.Count())
}

func TestScenario_TransferUsesDecryptedKey(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	wallet, err := e.provisioner.GetOrCreateWallet(ctx, 3, "erc20")
	require.NoError(t, err)
	assert.NotContains(t, string(wallet.PrivateKeyEncrypted), "key-")

	hash, err := e.transfers.Transfer(ctx, ports.TransferRequest{
		UserID:    3,
		Network:   "erc20",
		ToAddress: "0xdest",
		Amount:    decimal.RequireFromString("0.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "key-1->0xdest:0.5", hash)
}
