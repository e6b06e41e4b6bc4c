package ledger

import "github.com/shopspring/decimal"

// ForwardWAC blends incoming stock into the weighted-average unit cost.
// An empty stock takes the incoming cost as is.
func ForwardWAC(stock, cost, qty, unitCost float64) (newStock, newCost float64) {
	s, q := dec(stock), dec(qty)
	total := s.Add(q)
	if s.IsZero() || total.IsZero() {
		return float(total), Round(unitCost)
	}
	value := s.Mul(dec(cost)).Add(q.Mul(dec(unitCost)))
	return float(total), float(value.Div(total))
}

// ReverseWAC removes qty units valued at unitCost from the stock. It
// restores the state before ForwardWAC when given the same qty and
// unitCost. A stock that ends at or below zero has cost zero.
func ReverseWAC(stock, cost, qty, unitCost float64) (newStock, newCost float64) {
	s, q := dec(stock), dec(qty)
	remaining := s.Sub(q)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return float(remaining), 0
	}
	value := s.Mul(dec(cost)).Sub(q.Mul(dec(unitCost)))
	if value.IsNegative() {
		return float(remaining), 0
	}
	return float(remaining), float(value.Div(remaining))
}
