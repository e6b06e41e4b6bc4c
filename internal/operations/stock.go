package operations

import (
	"context"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// StockAdjustmentInput corrects a product's stock. Increases are valued at
// UnitCostUSD, or at the current cost when it is zero. CashAmountUSD is a
// signed cash movement caused by the adjustment, if any.
type StockAdjustmentInput struct {
	ProductID     string                `json:"productId"`
	Type          models.AdjustmentType `json:"type"`
	Quantity      float64               `json:"quantity"`
	UnitCostUSD   float64               `json:"unitCostUSD"`
	CashAmountUSD float64               `json:"cashAmountUSD"`
	Reason        string                `json:"reason"`
	Date          string                `json:"date"`
}

func (in StockAdjustmentInput) validate() error {
	if in.ProductID == "" {
		return ledger.NewValidationError("productId", nil, "is required")
	}
	if in.Type != models.AdjustmentIncrease && in.Type != models.AdjustmentDecrease {
		return ledger.NewValidationError("type", in.Type, "must be increase or decrease")
	}
	if in.Quantity <= 0 {
		return ledger.NewValidationError("quantity", in.Quantity, "must be positive")
	}
	if in.UnitCostUSD < 0 {
		return ledger.NewValidationError("unitCostUSD", in.UnitCostUSD, "must not be negative")
	}
	return ledger.ValidateDate("date", in.Date)
}

func (s *Service) CreateStockAdjustment(ctx context.Context, in StockAdjustmentInput) Result {
	const op = "CreateStockAdjustment"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		if err := in.validate(); err != nil {
			return "", err
		}
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		adjustments, err := store.Get[models.StockAdjustment](b, models.StockAdjustments)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		i := indexOf(products, func(p *models.Product) bool { return p.ID == in.ProductID })
		if i < 0 {
			return "", notFound(op, models.Products, in.ProductID)
		}
		p := products[i]

		adj := models.StockAdjustment{
			ID:            models.NewID(),
			ProductID:     p.ID,
			Type:          in.Type,
			Quantity:      ledger.Round(in.Quantity),
			CashAmountUSD: ledger.Round(in.CashAmountUSD),
			Reason:        in.Reason,
			Date:          in.Date,
			StockBefore:   p.Quantity,
			CostBefore:    p.CostPerBagUSD,
			CreatedAt:     s.stamp(),
		}
		switch adj.Type {
		case models.AdjustmentIncrease:
			adj.UnitCostUSD = in.UnitCostUSD
			if adj.UnitCostUSD == 0 {
				adj.UnitCostUSD = p.CostPerBagUSD
			}
			p.Quantity, p.CostPerBagUSD = ledger.ForwardWAC(p.Quantity, p.CostPerBagUSD, adj.Quantity, adj.UnitCostUSD)
		case models.AdjustmentDecrease:
			if p, err = ledger.DebitStock(p, adj.Quantity); err != nil {
				return "", err
			}
			adj.UnitCostUSD = p.CostPerBagUSD
		}
		adj.StockAfter, adj.CostAfter = p.Quantity, p.CostPerBagUSD
		products[i] = p

		adj.CashTransactionID = cash.mirror("", models.CashTransaction{
			Type:        models.CashStockAdjustment,
			Amount:      adj.CashAmountUSD,
			Date:        adj.Date,
			Description: adjustmentLabel(adj, p),
			RelatedID:   adj.ID,
			CreatedAt:   adj.CreatedAt,
		})

		if err := store.Put(b, models.Products, products); err != nil {
			return "", err
		}
		if err := store.Put(b, models.StockAdjustments, append(adjustments, adj)); err != nil {
			return "", err
		}
		return adj.ID, cash.save(b)
	})
}

func adjustmentLabel(adj models.StockAdjustment, p models.Product) string {
	label := "Stock " + string(adj.Type) + " " + p.Name
	if adj.Reason != "" {
		label += ": " + adj.Reason
	}
	return label
}

// DeleteStockAdjustment compensates the adjustment on the product and
// removes its cash mirror. An increase can only be undone while its bags are
// still in stock.
func (s *Service) DeleteStockAdjustment(ctx context.Context, id string) Result {
	const op = "DeleteStockAdjustment"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		adjustments, err := store.Get[models.StockAdjustment](b, models.StockAdjustments)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		k := indexOf(adjustments, func(a *models.StockAdjustment) bool { return a.ID == id })
		if k < 0 {
			return "", notFound(op, models.StockAdjustments, id)
		}
		adj := adjustments[k]
		i := indexOf(products, func(p *models.Product) bool { return p.ID == adj.ProductID })
		if i < 0 {
			return "", notFound(op, models.Products, adj.ProductID)
		}
		p := products[i]

		switch adj.Type {
		case models.AdjustmentIncrease:
			if p.Quantity < adj.Quantity-ledger.Epsilon {
				return "", ledger.NewValidationError("quantity", p.Quantity, "the adjusted bags are no longer in stock")
			}
			p.Quantity, p.CostPerBagUSD = ledger.ReverseWAC(p.Quantity, p.CostPerBagUSD, adj.Quantity, adj.UnitCostUSD)
		case models.AdjustmentDecrease:
			p.Quantity, p.CostPerBagUSD = ledger.ForwardWAC(p.Quantity, p.CostPerBagUSD, adj.Quantity, adj.UnitCostUSD)
		}
		products[i] = p

		cash.remove(adj.CashTransactionID)
		adjustments = removeWhere(adjustments, func(a *models.StockAdjustment) bool { return a.ID == id })
		if err := store.Put(b, models.Products, products); err != nil {
			return "", err
		}
		if err := store.Put(b, models.StockAdjustments, adjustments); err != nil {
			return "", err
		}
		return id, cash.save(b)
	})
}
