package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
	"tracker/internal/models"
)

func productIndex(products []models.Product) map[string]int {
	idx := make(map[string]int, len(products))
	for i, p := range products {
		idx[p.ID] = i
	}
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CreditStock adds the bags of a closing container to product stock at the
// container's incoming unit costs. It returns the updated products and the
// snapshot to store as the container's quantityAddedToStock. c must carry
// up to date totals.
func CreditStock(products []models.Product, c models.Container) ([]models.Product, map[string]models.StockCredit, error) {
	out := append([]models.Product(nil), products...)
	idx := productIndex(out)
	quantities := ProductQuantities(c)
	unitCosts := ProductUnitCosts(c)

	snapshot := make(map[string]models.StockCredit, len(quantities))
	for _, id := range sortedKeys(quantities) {
		i, ok := idx[id]
		if !ok {
			return nil, nil, NewValidationError("productLines.productId", id, "unknown product")
		}
		p := &out[i]
		credit := models.StockCredit{
			QuantityAdded: quantities[id],
			StockBefore:   p.Quantity,
			CostBefore:    p.CostPerBagUSD,
			UnitCostUSD:   unitCosts[id],
		}
		p.Quantity, p.CostPerBagUSD = ForwardWAC(p.Quantity, p.CostPerBagUSD, credit.QuantityAdded, credit.UnitCostUSD)
		snapshot[id] = credit
	}
	return out, snapshot, nil
}

// removeCredit undoes one credit on p. Snapshots written before the unit
// cost was recorded fall back to the cost before the credit.
func removeCredit(p *models.Product, id string, credit models.StockCredit) error {
	if p.Quantity < credit.QuantityAdded-Epsilon {
		return NewValidationError("quantity", p.Quantity,
			"product "+id+" no longer holds the bags received with this container")
	}
	if credit.UnitCostUSD == 0 && credit.QuantityAdded > 0 {
		p.Quantity = Sum(p.Quantity, -credit.QuantityAdded)
		p.CostPerBagUSD = credit.CostBefore
		if p.Quantity <= 0 {
			p.CostPerBagUSD = 0
		}
		return nil
	}
	p.Quantity, p.CostPerBagUSD = ReverseWAC(p.Quantity, p.CostPerBagUSD, credit.QuantityAdded, credit.UnitCostUSD)
	return nil
}

// ReverseStockCredit removes a container's stock credit from the products
// using the snapshot recorded when the container closed.
func ReverseStockCredit(products []models.Product, snapshot map[string]models.StockCredit) ([]models.Product, error) {
	out := append([]models.Product(nil), products...)
	idx := productIndex(out)
	for _, id := range sortedKeys(snapshot) {
		i, ok := idx[id]
		if !ok {
			return nil, NewValidationError("quantityAddedToStock", id, "unknown product")
		}
		if err := removeCredit(&out[i], id, snapshot[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RepriceStockCredit moves a closed container's products from their recorded
// unit costs to the container's current ones without touching quantities.
// It returns the updated products and snapshot.
//
// Only the bags of the credit still in stock are revalued: the product cost
// moves by min(quantityAdded, stock) * (new - old unit cost) / stock. Sold
// bags keep the cost they left at.
func RepriceStockCredit(products []models.Product, snapshot map[string]models.StockCredit, c models.Container) ([]models.Product, map[string]models.StockCredit, error) {
	out := append([]models.Product(nil), products...)
	idx := productIndex(out)
	unitCosts := ProductUnitCosts(c)

	next := make(map[string]models.StockCredit, len(snapshot))
	for _, id := range sortedKeys(snapshot) {
		credit := snapshot[id]
		newCost, ok := unitCosts[id]
		if !ok {
			return nil, nil, NewValidationError("productLines", id, "stocked product removed from a closed container")
		}
		i, ok := idx[id]
		if !ok {
			return nil, nil, NewValidationError("quantityAddedToStock", id, "unknown product")
		}
		repriceCredit(&out[i], credit, newCost)
		credit.UnitCostUSD = newCost
		next[id] = credit
	}
	return out, next, nil
}

// repriceCredit shifts p's cost for one credit moving to newCost. Snapshots
// without a unit cost are replayed in full when the stock still holds them
// and otherwise only pick up the new cost.
func repriceCredit(p *models.Product, credit models.StockCredit, newCost float64) {
	if p.Quantity <= 0 {
		return
	}
	if credit.UnitCostUSD == 0 && credit.QuantityAdded > 0 {
		if p.Quantity < credit.QuantityAdded-Epsilon {
			return
		}
		_ = removeCredit(p, "", credit)
		p.Quantity, p.CostPerBagUSD = ForwardWAC(p.Quantity, p.CostPerBagUSD, credit.QuantityAdded, newCost)
		return
	}
	held := decimal.Min(dec(credit.QuantityAdded), dec(p.Quantity))
	shift := held.Mul(dec(newCost).Sub(dec(credit.UnitCostUSD))).Div(dec(p.Quantity))
	cost := dec(p.CostPerBagUSD).Add(shift)
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	p.CostPerBagUSD = float(cost)
}

// DebitStock removes qty bags from product p at its current cost.
func DebitStock(p models.Product, qty float64) (models.Product, error) {
	if qty <= 0 {
		return p, NewValidationError("quantity", qty, "must be positive")
	}
	if p.Quantity < qty-Epsilon {
		return p, NewValidationError("quantity", qty, "exceeds the "+dec(p.Quantity).String()+" bags of "+p.Name+" in stock")
	}
	p.Quantity = Sum(p.Quantity, -qty)
	if p.Quantity <= 0 {
		p.Quantity = 0
	}
	return p, nil
}
