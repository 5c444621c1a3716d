package checkout

import "github.com/shopspring/decimal"

// MinorToMajor converts euro cents to a decimal euro amount.
func MinorToMajor(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
