package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
)

type pairKey struct {
	fiat   string
	crypto string
}

// ExchangeRateRepo implements ports.ExchangeRateRepository.
type ExchangeRateRepo struct {
	mu    sync.RWMutex
	rates map[pairKey]domain.ExchangeRate
}

// NewExchangeRateRepo creates an empty ExchangeRateRepo.
func NewExchangeRateRepo() *ExchangeRateRepo {
	return &ExchangeRateRepo{rates: make(map[pairKey]domain.ExchangeRate)}
}

func (r *ExchangeRateRepo) GetRate(_ context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rate, ok := r.rates[pairKey{fiatCurrency, cryptoCurrency}]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

// Save replaces the rate of the pair, keeping the original identifier.
func (r *ExchangeRateRepo) Save(_ context.Context, rate *domain.ExchangeRate) (*domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{rate.FiatCurrency, rate.CryptoCurrency}
	stored := *rate
	if prev, ok := r.rates[key]; ok {
		stored.ID = prev.ID
	} else if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.rates[key] = stored

	out := stored
	return &out, nil
}

func (r *ExchangeRateRepo) ListByCryptoCurrency(_ context.Context, cryptoCurrency string) ([]domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ExchangeRate, 0)
	for k, rate := range r.rates {
		if k.crypto == cryptoCurrency {
			out = append(out, rate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiatCurrency < out[j].FiatCurrency })
	return out, nil
}
