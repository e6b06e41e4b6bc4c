package ledger

import (
	"github.com/shopspring/decimal"
	"tracker/internal/models"
)

// PaymentAmountUSD is the USD cost of buying amountEUR, commission included.
func PaymentAmountUSD(amountEUR, exchangeRate, commissionPercent float64) float64 {
	factor := decimal.NewFromInt(1).Add(dec(commissionPercent).Div(decimal.NewFromInt(100)))
	return float(dec(amountEUR).Mul(dec(exchangeRate)).Mul(factor))
}

// ValidatePayment checks the user-entered fields of a payment.
func ValidatePayment(p models.Payment) error {
	if p.SupplierID == "" {
		return NewValidationError("supplierId", nil, "is required")
	}
	if err := ValidateDate("date", p.Date); err != nil {
		return err
	}
	if p.AmountEUR <= 0 {
		return NewValidationError("amountEUR", p.AmountEUR, "must be positive")
	}
	if p.ExchangeRate <= 0 {
		return NewValidationError("exchangeRate", p.ExchangeRate, "must be positive")
	}
	if p.CommissionPercent < 0 {
		return NewValidationError("commissionPercent", p.CommissionPercent, "must not be negative")
	}
	return nil
}

// AllocatedEUR sums the EUR amounts allocated from p.
func AllocatedEUR(p models.Payment) float64 {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(dec(a.AmountEUR))
	}
	return float(total)
}

// RecomputeUnallocated derives unallocatedEUR by summation over the
// allocations. It fails when the payment is over-allocated.
func RecomputeUnallocated(p models.Payment) (models.Payment, error) {
	allocated := decimal.Zero
	for _, a := range p.Allocations {
		allocated = allocated.Add(dec(a.AmountEUR))
	}
	rest := dec(p.AmountEUR).Sub(allocated)
	if rest.LessThan(dec(-Epsilon)) {
		return p, NewValidationError("allocations", float(allocated),
			"exceed the payment amount of "+dec(p.AmountEUR).String()+" EUR")
	}
	if rest.IsNegative() {
		rest = decimal.Zero
	}
	p.UnallocatedEUR = float(rest)
	return p, nil
}

// allocationUSD converts an EUR share of p to USD at the payment's own
// effective rate.
func allocationUSD(p models.Payment, amountEUR float64) float64 {
	total := dec(p.AmountEUR)
	if total.IsZero() {
		return 0
	}
	return float(dec(p.AmountUSD).Mul(dec(amountEUR)).Div(total))
}

// Allocate earmarks amountEUR of p for containerID, replacing an existing
// allocation to the same container. It returns the updated payment and the
// allocation as the container records it.
func Allocate(p models.Payment, containerID string, amountEUR float64) (models.Payment, models.ContainerAllocation, error) {
	if containerID == "" {
		return p, models.ContainerAllocation{}, NewValidationError("containerId", nil, "is required")
	}
	if amountEUR <= 0 {
		return p, models.ContainerAllocation{}, NewValidationError("amountEUR", amountEUR, "must be positive")
	}

	alloc := models.PaymentAllocation{
		ContainerID: containerID,
		AmountEUR:   Round(amountEUR),
		AmountUSD:   allocationUSD(p, amountEUR),
	}
	next := p
	next.Allocations = make([]models.PaymentAllocation, 0, len(p.Allocations)+1)
	replaced := false
	for _, a := range p.Allocations {
		if a.ContainerID == containerID {
			next.Allocations = append(next.Allocations, alloc)
			replaced = true
			continue
		}
		next.Allocations = append(next.Allocations, a)
	}
	if !replaced {
		next.Allocations = append(next.Allocations, alloc)
	}

	next, err := RecomputeUnallocated(next)
	if err != nil {
		return p, models.ContainerAllocation{}, err
	}
	return next, models.ContainerAllocation{
		PaymentID: p.ID,
		AmountEUR: alloc.AmountEUR,
		AmountUSD: alloc.AmountUSD,
	}, nil
}

// Deallocate removes the allocation of p to containerID, if any.
func Deallocate(p models.Payment, containerID string) models.Payment {
	next := p
	next.Allocations = make([]models.PaymentAllocation, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		if a.ContainerID != containerID {
			next.Allocations = append(next.Allocations, a)
		}
	}
	// removing allocations cannot over-allocate
	next, _ = RecomputeUnallocated(next)
	return next
}

// RescaleAllocations recomputes amountUSD of p and of each of its
// allocations after the amount, rate or commission changed.
func RescaleAllocations(p models.Payment) (models.Payment, error) {
	next := p
	next.AmountUSD = PaymentAmountUSD(p.AmountEUR, p.ExchangeRate, p.CommissionPercent)
	next.Allocations = make([]models.PaymentAllocation, len(p.Allocations))
	for i, a := range p.Allocations {
		a.AmountUSD = allocationUSD(next, a.AmountEUR)
		next.Allocations[i] = a
	}
	return RecomputeUnallocated(next)
}

// FindAllocation returns the allocation of p to containerID.
func FindAllocation(p models.Payment, containerID string) (models.PaymentAllocation, bool) {
	for _, a := range p.Allocations {
		if a.ContainerID == containerID {
			return a, true
		}
	}
	return models.PaymentAllocation{}, false
}
