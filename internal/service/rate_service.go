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
	"github.com/shopspring/decimal"
)

// revertedRatePrecision is the number of decimal places kept when deriving 1/rate.
const revertedRatePrecision = 18

// RateServiceImpl implements ports.RateService.
type RateServiceImpl struct {
	rateRepo ports.ExchangeRateRepository
	log      zerolog.Logger
}

// NewRateService creates a new RateServiceImpl.
func NewRateService(rateRepo ports.ExchangeRateRepository, log zerolog.Logger) *RateServiceImpl {
	return &RateServiceImpl{
		rateRepo: rateRepo,
		log:      log,
	}
}

// GetRate returns the stored rate of a currency pair.
func (s *RateServiceImpl) GetRate(ctx context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error) {
	fiatCurrency = strings.ToUpper(fiatCurrency)
	cryptoCurrency = strings.ToUpper(cryptoCurrency)

	rate, err := s.rateRepo.GetRate(ctx, fiatCurrency, cryptoCurrency)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("rate store", fmt.Errorf("get rate: %w", err))
	}
	if rate == nil {
		return nil, apperror.ErrRateUnavailable(fiatCurrency, cryptoCurrency)
	}
	return rate, nil
}

// UpsertRate stores a new snapshot for the pair, replacing the previous one.
func (s *RateServiceImpl) UpsertRate(ctx context.Context, req ports.RateUpsertRequest) (*domain.ExchangeRate, error) {
	if req.FiatCurrency == "" || req.CryptoCurrency == "" {
		return nil, apperror.Validation("fiat_currency and crypto_currency are required")
	}
	if !req.Rate.IsPositive() {
		return nil, apperror.Validation("rate must be positive")
	}

	reverted := decimal.NewFromInt(1).DivRound(req.Rate, revertedRatePrecision)
	if req.RevertedRate != nil {
		if !req.RevertedRate.IsPositive() {
			return nil, apperror.Validation("reverted_rate must be positive")
		}
		reverted = *req.RevertedRate
	}

	rate := &domain.ExchangeRate{
		ID:             uuid.New(),
		FiatCurrency:   strings.ToUpper(req.FiatCurrency),
		CryptoCurrency: strings.ToUpper(req.CryptoCurrency),
		Rate:           req.Rate,
		RevertedRate:   reverted,
		UpdatedAt:      time.Now().UTC(),
	}

	saved, err := s.rateRepo.Save(ctx, rate)
	if err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("rate store", fmt.Errorf("save rate: %w", err))
	}

	s.log.Info().
		Str("pair", saved.FiatCurrency+"/"+saved.CryptoCurrency).
		Str("rate", saved.Rate.String()).
		Str("reverted_rate", saved.RevertedRate.String()).
		Msg("exchange rate updated")

	return saved, nil
}
