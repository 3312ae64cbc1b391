package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"
	"crypto-payments/internal/core/ports/mocks"
	"crypto-payments/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testMocks struct {
	invoices   *mocks.MockInvoiceService
	reconciler *mocks.MockPaymentReconciler
	wallets    *mocks.MockWalletProvisioner
	transfers  *mocks.MockTransferService
	rates      *mocks.MockRateService
	tokens     *mocks.MockTokenService
}

func newTestRouter(t *testing.T, checkers ...ports.HealthChecker) (*gin.Engine, testMocks) {
	ctrl := gomock.NewController(t)
	m := testMocks{
		invoices:   mocks.NewMockInvoiceService(ctrl),
		reconciler: mocks.NewMockPaymentReconciler(ctrl),
		wallets:    mocks.NewMockWalletProvisioner(ctrl),
		transfers:  mocks.NewMockTransferService(ctrl),
		rates:      mocks.NewMockRateService(ctrl),
		tokens:     mocks.NewMockTokenService(ctrl),
	}
	m.tokens.EXPECT().Validate("test-token").Return(&ports.TokenClaims{Subject: "billing"}, nil).AnyTimes()

	r := SetupRouter(RouterDeps{
		InvoiceSvc:     m.invoices,
		Reconciler:     m.reconciler,
		Wallets:        m.wallets,
		TransferSvc:    m.transfers,
		RateSvc:        m.rates,
		TokenSvc:       m.tokens,
		HealthCheckers: checkers,
		Logger:         zerolog.Nop(),
	})
	return r, m
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func pendingInvoice() *domain.Invoice {
	fiat := decimal.NewFromInt(100)
	usd := "USD"
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Invoice{
		ID:             uuid.New(),
		UserID:         42,
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         domain.InvoiceStatusPending,
		FiatAmount:     &fiat,
		FiatCurrency:   &usd,
		CryptoAmount:   decimal.RequireFromString("0.05"),
		CryptoCurrency: "ETH",
		Network:        "erc20",
	}
}

// --- Auth ---

func TestRouter_RequiresBearerToken(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+uuid.NewString()+"/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", decodeError(t, w)["error_code"])
}

// --- Invoices ---

func TestCreateFiatInvoice_Success(t *testing.T) {
	r, m := newTestRouter(t)
	inv := pendingInvoice()

	m.invoices.EXPECT().CreateFiatInvoice(gomock.Any(), ports.FiatInvoiceRequest{
		UserID:       42,
		Network:      "erc20",
		FiatAmount:   decimal.NewFromInt(100),
		FiatCurrency: "USD",
	}).Return(inv, nil)

	w := do(r, http.MethodPost, "/api/v1/invoices/fiat",
		`{"user_id":42,"network":"erc20","fiat_amount":"100","fiat_currency":"usd"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, inv.ID.String(), data["id"])
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, "0.05", data["crypto_amount"])
	assert.Equal(t, "100", data["fiat_amount"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateFiatInvoice_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"bad network", `{"user_id":1,"network":"erc 20","fiat_amount":"1","fiat_currency":"USD"}`},
		{"bad currency", `{"user_id":1,"network":"erc20","fiat_amount":"1","fiat_currency":"$"}`},
		{"bad amount", `{"user_id":1,"network":"erc20","fiat_amount":"abc","fiat_currency":"USD"}`},
		{"not json", `user_id=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/invoices/fiat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "REQ_001", decodeError(t, w)["error_code"])
		})
	}
}

func TestCreateFiatInvoice_RateUnavailable(t *testing.T) {
	r, m := newTestRouter(t)
	m.invoices.EXPECT().CreateFiatInvoice(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrRateUnavailable("USD", "ETH"))

	w := do(r, http.MethodPost, "/api/v1/invoices/fiat",
		`{"user_id":42,"network":"erc20","fiat_amount":100,"fiat_currency":"USD"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "RATE_001", resp["error_code"])
	assert.Equal(t, true, resp["retryable"])
}

func TestCreateCryptoInvoice_Success(t *testing.T) {
	r, m := newTestRouter(t)
	contract := "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	expires := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		ID:              uuid.New(),
		UserID:          7,
		Status:          domain.InvoiceStatusPending,
		CryptoAmount:    decimal.RequireFromString("25.5"),
		CryptoCurrency:  "USDT",
		ContractAddress: &contract,
		ExpiresAt:       &expires,
		Network:         "erc20",
	}

	m.invoices.EXPECT().CreateCryptoInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.CryptoInvoiceRequest) (*domain.Invoice, error) {
			assert.Equal(t, int64(7), req.UserID)
			assert.True(t, req.CryptoAmount.Equal(decimal.RequireFromString("25.5")))
			assert.Equal(t, "USDT", req.CryptoCurrency)
			require.NotNil(t, req.ContractAddress)
			assert.Equal(t, contract, *req.ContractAddress)
			require.NotNil(t, req.ExpiresAt)
			assert.True(t, req.ExpiresAt.Equal(expires))
			return inv, nil
		})

	w := do(r, http.MethodPost, "/api/v1/invoices/crypto", map[string]interface{}{
		"user_id":          7,
		"network":          "erc20",
		"crypto_amount":    "25.5",
		"crypto_currency":  "usdt",
		"contract_address": contract,
		"expires_at":       expires.Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, contract, data["contract_address"])
	assert.Equal(t, "2026-04-02T00:00:00Z", data["expires_at"])
	assert.Nil(t, data["fiat_amount"])
}

func TestCheckInvoice_Reconciles(t *testing.T) {
	r, m := newTestRouter(t)
	inv := pendingInvoice()
	inv.Status = domain.InvoiceStatusPaid

	m.reconciler.EXPECT().CheckInvoiceStatus(gomock.Any(), inv.ID).Return(inv, nil)

	w := do(r, http.MethodGet, "/api/v1/invoices/"+inv.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", decodeData(t, w)["status"])
}

func TestCheckInvoice_Errors(t *testing.T) {
	r, m := newTestRouter(t)

	t.Run("malformed id", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		m.reconciler.EXPECT().CheckInvoiceStatus(gomock.Any(), id).Return(nil, apperror.ErrNotFound("invoice"))
		w := do(r, http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, false, decodeError(t, w)["retryable"])
	})

	t.Run("chain unavailable", func(t *testing.T) {
		id := uuid.New()
		m.reconciler.EXPECT().CheckInvoiceStatus(gomock.Any(), id).
			Return(nil, apperror.ErrCollaboratorUnavailable("blockchain reader", errors.New("timeout")))
		w := do(r, http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "SYS_002", resp["error_code"])
		assert.Equal(t, true, resp["retryable"])
		assert.NotContains(t, w.Body.String(), "timeout", "internal error must not leak")
	})
}

func TestInvoiceStatus(t *testing.T) {
	r, m := newTestRouter(t)
	id := uuid.New()
	m.invoices.EXPECT().GetInvoiceStatus(gomock.Any(), id).Return(domain.InvoiceStatusExpired, nil)

	w := do(r, http.MethodGet, "/api/v1/invoices/"+id.String()+"/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "EXPIRED", data["status"])
}

func TestListUserInvoices(t *testing.T) {
	r, m := newTestRouter(t)
	a, b := pendingInvoice(), pendingInvoice()
	m.invoices.EXPECT().ListUserInvoices(gomock.Any(), int64(42)).Return([]domain.Invoice{*a, *b}, nil)
	m.invoices.EXPECT().ListUserInvoices(gomock.Any(), int64(43)).Return([]domain.Invoice{}, nil)

	w := do(r, http.MethodGet, "/api/v1/users/42/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(2), data["total"])
	assert.Len(t, data["items"], 2)

	w = do(r, http.MethodGet, "/api/v1/users/43/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decodeData(t, w)["items"])

	w = do(r, http.MethodGet, "/api/v1/users/abc/invoices", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Wallets ---

func TestGetOrCreateWallet(t *testing.T) {
	r, m := newTestRouter(t)
	wallet := &domain.Wallet{
		ID:                  uuid.New(),
		UserID:              42,
		Network:             "erc20",
		Address:             "0xabc",
		PrivateKeyEncrypted: []byte("secret-blob"),
		CreatedAt:           time.Now(),
	}
	m.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), int64(42), "erc20").Return(wallet, nil)

	w := do(r, http.MethodPut, "/api/v1/users/42/wallets/erc20", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "0xabc", data["address"])
	assert.Equal(t, "erc20", data["network"])
	assert.NotContains(t, w.Body.String(), "secret-blob")
}

func TestGetOrCreateWallet_UnsupportedNetwork(t *testing.T) {
	r, m := newTestRouter(t)
	m.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), int64(42), "dogecoin").
		Return(nil, apperror.ErrUnsupportedNetwork("dogecoin"))

	w := do(r, http.MethodPut, "/api/v1/users/42/wallets/dogecoin", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NET_001", decodeError(t, w)["error_code"])
}

// --- Transfers ---

func TestTransfer_Success(t *testing.T) {
	r, m := newTestRouter(t)
	m.transfers.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		UserID:    42,
		Network:   "erc20",
		ToAddress: "0xdest",
		Amount:    decimal.RequireFromString("0.5"),
		Options:   ports.TransferOptions{"gas_limit": "30000"},
	}).Return("0xhash", nil)

	w := do(r, http.MethodPost, "/api/v1/transfers",
		`{"user_id":42,"network":"erc20","to_address":"0xdest","amount":"0.5","options":{"gas_limit":"30000"}}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0xhash", decodeData(t, w)["tx_hash"])
}

func TestTransfer_Failed(t *testing.T) {
	r, m := newTestRouter(t)
	m.transfers.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return("", apperror.ErrTransferFailed(errors.New("insufficient funds")))

	w := do(r, http.MethodPost, "/api/v1/transfers",
		`{"user_id":42,"network":"erc20","to_address":"0xdest","amount":"0.5"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "TRF_001", resp["error_code"])
	assert.Equal(t, false, resp["retryable"])
}

// --- Rates ---

func TestGetRate(t *testing.T) {
	r, m := newTestRouter(t)
	m.rates.EXPECT().GetRate(gomock.Any(), "USD", "ETH").Return(&domain.ExchangeRate{
		FiatCurrency:   "USD",
		CryptoCurrency: "ETH",
		Rate:           decimal.NewFromInt(2000),
		RevertedRate:   decimal.RequireFromString("0.0005"),
	}, nil)

	w := do(r, http.MethodGet, "/api/v1/rates/USD/ETH", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "2000", data["rate"])
	assert.Equal(t, "0.0005", data["reverted_rate"])
}

func TestUpsertRate(t *testing.T) {
	r, m := newTestRouter(t)
	m.rates.EXPECT().UpsertRate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.RateUpsertRequest) (*domain.ExchangeRate, error) {
			assert.Equal(t, "USD", req.FiatCurrency)
			assert.True(t, req.Rate.Equal(decimal.NewFromInt(150)))
			assert.Nil(t, req.RevertedRate)
			return &domain.ExchangeRate{
				FiatCurrency:   "USD",
				CryptoCurrency: "SOL",
				Rate:           req.Rate,
				RevertedRate:   decimal.NewFromInt(1).DivRound(req.Rate, 18),
			}, nil
		})

	w := do(r, http.MethodPut, "/api/v1/rates", `{"fiat_currency":"USD","crypto_currency":"SOL","rate":"150"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "150", decodeData(t, w)["rate"])
}

// --- Health ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r, _ := newTestRouter(t, stubChecker{name: "postgresql"}, stubChecker{name: "redis"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	})

	t.Run("degraded", func(t *testing.T) {
		r, _ := newTestRouter(t, stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("connection refused")})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "degraded")
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}
