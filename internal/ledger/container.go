package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"tracker/internal/models"
)

// DeriveStatus applies the container status rules: paid once the EUR paid
// covers the grand total, customs paid once duties are recorded, closed when
// both hold.
func DeriveStatus(totalEURPaid, grandTotalEUR, customsDutiesUSD float64) (models.PaymentStatus, models.CustomsStatus, models.ContainerStatus) {
	paid, total := dec(totalEURPaid), dec(grandTotalEUR)

	payment := models.PaymentPartial
	switch {
	case paid.IsZero():
		payment = models.PaymentUnpaid
	case paid.GreaterThanOrEqual(total):
		payment = models.PaymentPaid
	}

	customs := models.CustomsPending
	if customsDutiesUSD > 0 {
		customs = models.CustomsPaid
	}

	status := models.ContainerOpen
	if payment == models.PaymentPaid && customs == models.CustomsPaid {
		status = models.ContainerClosed
	}
	return payment, customs, status
}

// ContainerTotals returns c with every derived field recomputed from its
// product lines, freight, duties and payment allocations.
func ContainerTotals(c models.Container) models.Container {
	out := c
	out.ProductLines = append([]models.ProductLine(nil), c.ProductLines...)
	out.PaymentAllocations = append([]models.ContainerAllocation(nil), c.PaymentAllocations...)

	products, bags := decimal.Zero, decimal.Zero
	for i, line := range out.ProductLines {
		lineTotal := dec(line.QuantityBags).Mul(dec(line.PriceEUR))
		out.ProductLines[i].LineTotal = float(lineTotal)
		products = products.Add(lineTotal)
		bags = bags.Add(dec(line.QuantityBags))
	}

	paidEUR, paidUSD := decimal.Zero, decimal.Zero
	for _, a := range out.PaymentAllocations {
		paidEUR = paidEUR.Add(dec(a.AmountEUR))
		paidUSD = paidUSD.Add(dec(a.AmountUSD))
	}

	grand := products.Add(dec(c.FreightCostEUR))
	totalCost := paidUSD.Add(dec(c.CustomsDutiesUSD))

	out.ProductsTotalEUR = float(products)
	out.GrandTotalEUR = float(grand)
	out.TotalEURPaid = float(paidEUR)
	out.TotalUSDPaid = float(paidUSD)
	out.TotalCostUSD = float(totalCost)
	out.CostPerBagUSD = 0
	if bags.IsPositive() {
		out.CostPerBagUSD = float(totalCost.Div(bags))
	}
	out.PaymentStatus, out.CustomsStatus, out.ContainerStatus =
		DeriveStatus(out.TotalEURPaid, out.GrandTotalEUR, out.CustomsDutiesUSD)
	return out
}

// ProductUnitCosts splits the container's USD cost over its products in
// proportion to their EUR value and returns the incoming cost per bag of
// each product. A container without EUR value is split by bag count.
func ProductUnitCosts(c models.Container) map[string]float64 {
	type share struct{ bags, eur decimal.Decimal }
	shares := make(map[string]*share)
	totalEUR, totalBags := decimal.Zero, decimal.Zero
	for _, line := range c.ProductLines {
		s, ok := shares[line.ProductID]
		if !ok {
			s = &share{}
			shares[line.ProductID] = s
		}
		bags := dec(line.QuantityBags)
		eur := bags.Mul(dec(line.PriceEUR))
		s.bags = s.bags.Add(bags)
		s.eur = s.eur.Add(eur)
		totalBags = totalBags.Add(bags)
		totalEUR = totalEUR.Add(eur)
	}

	cost := dec(c.TotalCostUSD)
	out := make(map[string]float64, len(shares))
	for id, s := range shares {
		if !s.bags.IsPositive() {
			out[id] = 0
			continue
		}
		var productCost decimal.Decimal
		switch {
		case totalEUR.IsPositive():
			productCost = cost.Mul(s.eur).Div(totalEUR)
		case totalBags.IsPositive():
			productCost = cost.Mul(s.bags).Div(totalBags)
		}
		out[id] = float(productCost.Div(s.bags))
	}
	return out
}

// ProductQuantities sums the bags of each product over the container lines.
func ProductQuantities(c models.Container) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, line := range c.ProductLines {
		sums[line.ProductID] = sums[line.ProductID].Add(dec(line.QuantityBags))
	}
	out := make(map[string]float64, len(sums))
	for id, q := range sums {
		out[id] = float(q)
	}
	return out
}

// ValidateContainer checks the user-entered fields of a container.
func ValidateContainer(c models.Container) error {
	if c.SupplierID == "" {
		return NewValidationError("supplierId", nil, "is required")
	}
	if err := ValidateDate("date", c.Date); err != nil {
		return err
	}
	if len(c.ProductLines) == 0 {
		return NewValidationError("productLines", nil, "at least one product line is required")
	}
	for _, line := range c.ProductLines {
		if line.ProductID == "" {
			return NewValidationError("productLines.productId", nil, "is required")
		}
		if line.QuantityBags <= 0 {
			return NewValidationError("productLines.quantityBags", line.QuantityBags, "must be positive")
		}
		if line.PriceEUR < 0 {
			return NewValidationError("productLines.priceEUR", line.PriceEUR, "must not be negative")
		}
	}
	if c.FreightCostEUR < 0 {
		return NewValidationError("freightCostEUR", c.FreightCostEUR, "must not be negative")
	}
	if c.CustomsDutiesUSD < 0 {
		return NewValidationError("customsDutiesUSD", c.CustomsDutiesUSD, "must not be negative")
	}
	seen := make(map[string]bool, len(c.PaymentAllocations))
	for _, a := range c.PaymentAllocations {
		if a.PaymentID == "" {
			return NewValidationError("paymentAllocations.paymentId", nil, "is required")
		}
		if seen[a.PaymentID] {
			return NewValidationError("paymentAllocations.paymentId", a.PaymentID, "allocated twice")
		}
		seen[a.PaymentID] = true
		if a.AmountEUR <= 0 {
			return NewValidationError("paymentAllocations.amountEUR", a.AmountEUR, "must be positive")
		}
	}
	return nil
}

// ValidateDate checks that value is a business date.
func ValidateDate(field, value string) error {
	if value == "" {
		return NewValidationError(field, nil, "is required")
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return NewValidationError(field, value, "must be formatted as "+models.DateLayout)
	}
	return nil
}
