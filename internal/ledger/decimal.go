package ledger

import "github.com/shopspring/decimal"

// Records carry float64; arithmetic runs on decimals and is rounded back
// at this precision so that repeated recomputation is stable.
const precision = 10

// Epsilon is the tolerance used when comparing stored amounts.
const Epsilon = 1e-6

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func float(d decimal.Decimal) float64 {
	return d.Round(precision).InexactFloat64()
}

// Round returns f rounded to the ledger precision.
func Round(f float64) float64 {
	return float(dec(f))
}

// Sum adds amounts without accumulating binary rounding error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(dec(a))
	}
	return float(total)
}
