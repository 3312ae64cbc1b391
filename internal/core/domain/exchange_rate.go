package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRate is a fiat/crypto conversion snapshot, unique per currency pair.
// Rate is crypto priced in fiat; RevertedRate is fiat priced in crypto.
type ExchangeRate struct {
	ID             uuid.UUID       `json:"id"`
	FiatCurrency   string          `json:"fiat_currency"`
	CryptoCurrency string          `json:"crypto_currency"`
	Rate           decimal.Decimal `json:"rate"`
	RevertedRate   decimal.Decimal `json:"reverted_rate"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCrypto converts a fiat amount into the crypto currency of the pair.
func (r *ExchangeRate) ToCrypto(fiatAmount decimal.Decimal) decimal.Decimal {
	return fiatAmount.Mul(r.RevertedRate)
}
