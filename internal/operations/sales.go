package operations

import (
	"context"

	"github.com/shopspring/decimal"
	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

type SaleInput struct {
	Customer string          `json:"customer"`
	Date     string          `json:"date"`
	Items    []SaleItemInput `json:"items"`
}

type SaleItemInput struct {
	ProductID      string  `json:"productId"`
	QuantityBags   float64 `json:"quantityBags"`
	PricePerBagUSD float64 `json:"pricePerBagUSD"`
}

// CreateSale debits stock at the current unit costs, records the cost and
// profit of the sale and brings the proceeds into cash.
func (s *Service) CreateSale(ctx context.Context, in SaleInput) Result {
	const op = "CreateSale"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		if err := ledger.ValidateDate("date", in.Date); err != nil {
			return "", err
		}
		if len(in.Items) == 0 {
			return "", ledger.NewValidationError("items", nil, "at least one item is required")
		}
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		sales, err := store.Get[models.Sale](b, models.Sales)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}

		sale := models.Sale{
			ID:        models.NewID(),
			Customer:  in.Customer,
			Date:      in.Date,
			Items:     make([]models.SaleItem, 0, len(in.Items)),
			CreatedAt: s.stamp(),
		}
		total, cost := decimal.Zero, decimal.Zero
		for _, item := range in.Items {
			if item.PricePerBagUSD < 0 {
				return "", ledger.NewValidationError("items.pricePerBagUSD", item.PricePerBagUSD, "must not be negative")
			}
			i := indexOf(products, func(p *models.Product) bool { return p.ID == item.ProductID })
			if i < 0 {
				return "", notFound(op, models.Products, item.ProductID)
			}
			unitCost := products[i].CostPerBagUSD
			if products[i], err = ledger.DebitStock(products[i], item.QuantityBags); err != nil {
				return "", err
			}
			line := decimal.NewFromFloat(item.QuantityBags).Mul(decimal.NewFromFloat(item.PricePerBagUSD))
			total = total.Add(line)
			cost = cost.Add(decimal.NewFromFloat(item.QuantityBags).Mul(decimal.NewFromFloat(unitCost)))
			sale.Items = append(sale.Items, models.SaleItem{
				ProductID:      item.ProductID,
				QuantityBags:   item.QuantityBags,
				PricePerBagUSD: item.PricePerBagUSD,
				CostPerBagUSD:  unitCost,
				LineTotalUSD:   ledger.Round(line.InexactFloat64()),
			})
		}
		sale.TotalUSD = ledger.Round(total.InexactFloat64())
		sale.TotalCostUSD = ledger.Round(cost.InexactFloat64())
		sale.ProfitUSD = ledger.Sum(sale.TotalUSD, -sale.TotalCostUSD)

		label := "Sale " + sale.Date
		if sale.Customer != "" {
			label = "Sale to " + sale.Customer
		}
		sale.CashTransactionID = cash.mirror("", models.CashTransaction{
			Type:        models.CashSale,
			Amount:      sale.TotalUSD,
			Date:        sale.Date,
			Description: label,
			RelatedID:   sale.ID,
			CreatedAt:   sale.CreatedAt,
		})

		if err := store.Put(b, models.Products, products); err != nil {
			return "", err
		}
		if err := store.Put(b, models.Sales, append(sales, sale)); err != nil {
			return "", err
		}
		return sale.ID, cash.save(b)
	})
}

// DeleteSale returns the sold bags to stock at the cost they left with and
// removes the proceeds from cash.
func (s *Service) DeleteSale(ctx context.Context, id string) Result {
	const op = "DeleteSale"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		sales, err := store.Get[models.Sale](b, models.Sales)
		if err != nil {
			return "", err
		}
		cash, err := loadCash(b)
		if err != nil {
			return "", err
		}
		k := indexOf(sales, func(x *models.Sale) bool { return x.ID == id })
		if k < 0 {
			return "", notFound(op, models.Sales, id)
		}
		for _, item := range sales[k].Items {
			i := indexOf(products, func(p *models.Product) bool { return p.ID == item.ProductID })
			if i < 0 {
				return "", notFound(op, models.Products, item.ProductID)
			}
			p := &products[i]
			p.Quantity, p.CostPerBagUSD = ledger.ForwardWAC(p.Quantity, p.CostPerBagUSD, item.QuantityBags, item.CostPerBagUSD)
		}
		cash.remove(sales[k].CashTransactionID)
		sales = removeWhere(sales, func(x *models.Sale) bool { return x.ID == id })

		if err := store.Put(b, models.Products, products); err != nil {
			return "", err
		}
		if err := store.Put(b, models.Sales, sales); err != nil {
			return "", err
		}
		return id, cash.save(b)
	})
}
