package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const rateColumns = `id, fiat_currency, crypto_currency, rate::text, reverted_rate::text, updated_at`

// ExchangeRateRepo implements ports.ExchangeRateRepository.
type ExchangeRateRepo struct {
	pool Pool
}

// NewExchangeRateRepo creates a new ExchangeRateRepo.
func NewExchangeRateRepo(pool Pool) *ExchangeRateRepo {
	return &ExchangeRateRepo{pool: pool}
}

// GetRate fetches the snapshot of a currency pair.
func (r *ExchangeRateRepo) GetRate(ctx context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error) {
	query := `SELECT ` + rateColumns + ` FROM exchange_rates WHERE fiat_currency = $1 AND crypto_currency = $2`

	rate, err := scanRate(r.pool.QueryRow(ctx, query, fiatCurrency, cryptoCurrency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange rate: %w", err)
	}
	return rate, nil
}

// Save upserts the snapshot of the pair. The row keeps its original id.
func (r *ExchangeRateRepo) Save(ctx context.Context, rate *domain.ExchangeRate) (*domain.ExchangeRate, error) {
	query := `INSERT INTO exchange_rates (id, fiat_currency, crypto_currency, rate, reverted_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fiat_currency, crypto_currency) DO UPDATE
		SET rate = EXCLUDED.rate, reverted_rate = EXCLUDED.reverted_rate, updated_at = EXCLUDED.updated_at
		RETURNING ` + rateColumns

	id := rate.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	saved, err := scanRate(r.pool.QueryRow(ctx, query,
		id, rate.FiatCurrency, rate.CryptoCurrency,
		rate.Rate.String(), rate.RevertedRate.String(), rate.UpdatedAt,
	))
	if err != nil {
		return nil, wrapWriteErr("upsert exchange rate", err)
	}
	return saved, nil
}

// ListByCryptoCurrency lists every fiat pair quoted for one crypto currency.
func (r *ExchangeRateRepo) ListByCryptoCurrency(ctx context.Context, cryptoCurrency string) ([]domain.ExchangeRate, error) {
	query := `SELECT ` + rateColumns + ` FROM exchange_rates WHERE crypto_currency = $1 ORDER BY fiat_currency`

	rows, err := r.pool.Query(ctx, query, cryptoCurrency)
	if err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}
	defer rows.Close()

	rates := make([]domain.ExchangeRate, 0)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exchange rate row: %w", err)
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange rate rows: %w", err)
	}
	return rates, nil
}

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var (
		rate            domain.ExchangeRate
		value, reverted string
	)
	if err := row.Scan(&rate.ID, &rate.FiatCurrency, &rate.CryptoCurrency, &value, &reverted, &rate.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if rate.Rate, err = decimal.NewFromString(value); err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", value, err)
	}
	if rate.RevertedRate, err = decimal.NewFromString(reverted); err != nil {
		return nil, fmt.Errorf("parse reverted_rate %q: %w", reverted, err)
	}
	return &rate, nil
}
