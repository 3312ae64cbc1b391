package evm

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the native coin (wei per ether = 10^18).
const EtherDecimals int32 = 18

// ToBaseUnits converts a display amount into integer base units.
// Amounts with more fractional digits than decimals are rejected rather than rounded.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}
	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	return shifted.BigInt(), nil
}

// MinimumBaseUnits returns the smallest integer amount of base units that covers amount.
// Fractions of a base unit round up, so a payment of the returned value always satisfies amount.
func MinimumBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}
	return amount.Shift(decimals).Ceil().BigInt(), nil
}

// FromBaseUnits converts integer base units back into a display amount.
func FromBaseUnits(v *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(v, -decimals)
}
