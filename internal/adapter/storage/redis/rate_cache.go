package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crypto-payments/internal/core/domain"
	"crypto-payments/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateCache is a read-through Redis cache in front of an ExchangeRateRepository.
// Redis failures degrade to the underlying store; misses are not cached.
type RateCache struct {
	next   ports.ExchangeRateRepository
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

// NewRateCache wraps next with a cache whose entries live for ttl.
func NewRateCache(next ports.ExchangeRateRepository, client goredis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RateCache {
	return &RateCache{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "rate:",
		log:    log,
	}
}

func (c *RateCache) key(fiatCurrency, cryptoCurrency string) string {
	return c.prefix + fiatCurrency + ":" + cryptoCurrency
}

// GetRate serves the pair from Redis, falling back to the store on a miss.
func (c *RateCache) GetRate(ctx context.Context, fiatCurrency, cryptoCurrency string) (*domain.ExchangeRate, error) {
	key := c.key(fiatCurrency, cryptoCurrency)

	cached, err := c.get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("rate cache read failed, falling through to store")
	}
	if cached != nil {
		return cached, nil
	}

	rate, err := c.next.GetRate(ctx, fiatCurrency, cryptoCurrency)
	if err != nil || rate == nil {
		return rate, err
	}

	if err := c.set(ctx, key, rate); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to cache exchange rate")
	}
	return rate, nil
}

// Save writes through to the store and evicts the cached pair.
func (c *RateCache) Save(ctx context.Context, rate *domain.ExchangeRate) (*domain.ExchangeRate, error) {
	saved, err := c.next.Save(ctx, rate)
	if err != nil {
		return nil, err
	}

	key := c.key(saved.FiatCurrency, saved.CryptoCurrency)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to evict cached exchange rate")
	}
	return saved, nil
}

func (c *RateCache) ListByCryptoCurrency(ctx context.Context, cryptoCurrency string) ([]domain.ExchangeRate, error) {
	return c.next.ListByCryptoCurrency(ctx, cryptoCurrency)
}

func (c *RateCache) get(ctx context.Context, key string) (*domain.ExchangeRate, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate get: %w", err)
	}

	var rate domain.ExchangeRate
	if err := json.Unmarshal(val, &rate); err != nil {
		return nil, fmt.Errorf("decode cached rate: %w", err)
	}
	return &rate, nil
}

func (c *RateCache) set(ctx context.Context, key string, rate *domain.ExchangeRate) error {
	val, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("encode rate: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
