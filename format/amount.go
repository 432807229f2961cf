// Package format renders decoded values for display. Nothing produced here is
// authoritative: callers keep the raw values alongside the rendered strings.
package format

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatAmount divides raw by 10^decimals without losing precision and
// appends symbol when it is not empty.
//
// FormatAmount(big.NewInt(1500000), 6, "USDC") == "1.5 USDC"
func FormatAmount(raw *big.Int, decimals uint8, symbol string) string {
	if raw == nil {
		raw = new(big.Int)
	}

	amount := decimal.NewFromBigInt(raw, -int32(decimals)).String()
	if symbol == "" {
		return amount
	}

	return amount + " " + symbol
}
