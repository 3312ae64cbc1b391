package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"
	"crypto-payments/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvoiceServiceImpl implements ports.InvoiceService.
type InvoiceServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	rates       ports.RateProvider
	wallets     ports.WalletProvisioner
	clients     ports.NetworkClients
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceServiceImpl.
func NewInvoiceService(
	invoiceRepo ports.InvoiceRepository,
	rates ports.RateProvider,
	wallets ports.WalletProvisioner,
	clients ports.NetworkClients,
	log zerolog.Logger,
) *InvoiceServiceImpl {
	return &InvoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		rates:       rates,
		wallets:     wallets,
		clients:     clients,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateFiatInvoice prices the invoice in the settlement currency of the network
// using the stored reverted rate, then persists it as PENDING.
func (s *InvoiceServiceImpl) CreateFiatInvoice(ctx context.Context, req ports.FiatInvoiceRequest) (*domain.Invoice, error) {
	if !req.FiatAmount.IsPositive() {
		return nil, apperror.Validation("fiat_amount must be positive")
	}

	client, ok := s.clients[req.Network]
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(req.Network)
	}
	// Rate pairs are stored upper case.
	cryptoCurrency := strings.ToUpper(client.NetworkName())
	fiatCurrency := strings.ToUpper(req.FiatCurrency)

	rate, err := s.rates.GetRate(ctx, fiatCurrency, cryptoCurrency)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("rate store", fmt.Errorf("get rate: %w", err))
	}
	if rate == nil {
		return nil, apperror.ErrRateUnavailable(fiatCurrency, cryptoCurrency)
	}

	if _, err := s.wallets.GetOrCreateWallet(ctx, req.UserID, req.Network); err != nil {
		return nil, err
	}

	fiatAmount := req.FiatAmount
	now := s.now()
	invoice := &domain.Invoice{
		ID:             uuid.New(),
		UserID:         req.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      req.ExpiresAt,
		Status:         domain.InvoiceStatusPending,
		FiatAmount:     &fiatAmount,
		FiatCurrency:   &fiatCurrency,
		CryptoAmount:   rate.ToCrypto(req.FiatAmount),
		CryptoCurrency: cryptoCurrency,
		Network:        req.Network,
	}

	return s.save(ctx, invoice)
}

// CreateCryptoInvoice persists a PENDING invoice priced directly in crypto.
func (s *InvoiceServiceImpl) CreateCryptoInvoice(ctx context.Context, req ports.CryptoInvoiceRequest) (*domain.Invoice, error) {
	if !req.CryptoAmount.IsPositive() {
		return nil, apperror.Validation("crypto_amount must be positive")
	}
	if _, ok := s.clients[req.Network]; !ok {
		return nil, apperror.ErrUnsupportedNetwork(req.Network)
	}

	if _, err := s.wallets.GetOrCreateWallet(ctx, req.UserID, req.Network); err != nil {
		return nil, err
	}

	now := s.now()
	invoice := &domain.Invoice{
		ID:              uuid.New(),
		UserID:          req.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       req.ExpiresAt,
		Status:          domain.InvoiceStatusPending,
		CryptoAmount:    req.CryptoAmount,
		CryptoCurrency:  req.CryptoCurrency,
		ContractAddress: req.ContractAddress,
		Network:         req.Network,
	}

	return s.save(ctx, invoice)
}

func (s *InvoiceServiceImpl) save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	saved, err := s.invoiceRepo.Save(ctx, invoice)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("invoice store", fmt.Errorf("save invoice: %w", err))
	}

	s.log.Info().
		Str("invoice_id", saved.ID.String()).
		Int64("user_id", saved.UserID).
		Str("network", saved.Network).
		Str("crypto_amount", saved.CryptoAmount.String()).
		Str("crypto_currency", saved.CryptoCurrency).
		Msg("invoice created")

	return saved, nil
}

// GetInvoiceStatus returns the stored status without consulting the blockchain.
func (s *InvoiceServiceImpl) GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID) (domain.InvoiceStatus, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return "", apperror.ErrCollaboratorUnavailable("invoice store", fmt.Errorf("get invoice: %w", err))
	}
	if invoice == nil {
		return "", apperror.ErrNotFound("invoice")
	}
	return invoice.Status, nil
}

// ListUserInvoices returns every invoice of a user, newest first.
func (s *InvoiceServiceImpl) ListUserInvoices(ctx context.Context, userID int64) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("invoice store", fmt.Errorf("list invoices: %w", err))
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return invoices, nil
}
