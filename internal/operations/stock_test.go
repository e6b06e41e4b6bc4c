package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/ledger"
	"tracker/internal/models"
)

func TestStockAdjustment_IncreaseBlendsCost(t *testing.T) {
	f := newFixture(t)
	productID := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice", Quantity: 10, CostPerBagUSD: 4}))

	id := f.ok(f.svc.CreateStockAdjustment(f.ctx, StockAdjustmentInput{
		ProductID: productID, Type: models.AdjustmentIncrease, Quantity: 5, UnitCostUSD: 7, Date: "2024-06-01",
	}))

	p := f.product(productID)
	assert.Equal(t, 15.0, p.Quantity)
	assert.InDelta(t, 5.0, p.CostPerBagUSD, ledger.Epsilon)

	adj := find(f, models.StockAdjustments, func(a models.StockAdjustment) bool { return a.ID == id })
	assert.Equal(t, 10.0, adj.StockBefore)
	assert.Equal(t, 4.0, adj.CostBefore)
	assert.Equal(t, 15.0, adj.StockAfter)
	assert.Empty(t, adj.CashTransactionID)
	assert.Empty(t, get[models.CashTransaction](f, models.CashTransactions))

	f.ok(f.svc.DeleteStockAdjustment(f.ctx, id))
	p = f.product(productID)
	assert.Equal(t, 10.0, p.Quantity)
	assert.InDelta(t, 4.0, p.CostPerBagUSD, ledger.Epsilon)
}

func TestStockAdjustment_DecreaseWithCashMirror(t *testing.T) {
	f := newFixture(t)
	productID := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice", Quantity: 10, CostPerBagUSD: 4}))

	id := f.ok(f.svc.CreateStockAdjustment(f.ctx, StockAdjustmentInput{
		ProductID: productID, Type: models.AdjustmentDecrease, Quantity: 3, CashAmountUSD: 9,
		Reason: "damaged bags sold off", Date: "2024-06-01",
	}))

	p := f.product(productID)
	assert.Equal(t, 7.0, p.Quantity)
	assert.Equal(t, 4.0, p.CostPerBagUSD)

	adj := find(f, models.StockAdjustments, func(a models.StockAdjustment) bool { return a.ID == id })
	require.NotEmpty(t, adj.CashTransactionID)
	cash := find(f, models.CashTransactions, func(c models.CashTransaction) bool { return c.ID == adj.CashTransactionID })
	assert.Equal(t, models.CashStockAdjustment, cash.Type)
	assert.Equal(t, 9.0, cash.Amount)

	f.ok(f.svc.DeleteStockAdjustment(f.ctx, id))
	assert.Equal(t, 10.0, f.product(productID).Quantity)
	assert.Empty(t, get[models.CashTransaction](f, models.CashTransactions))
}

func TestStockAdjustment_NegativeStockRejected(t *testing.T) {
	f := newFixture(t)
	productID := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice", Quantity: 2}))

	err := f.failed(f.svc.CreateStockAdjustment(f.ctx, StockAdjustmentInput{
		ProductID: productID, Type: models.AdjustmentDecrease, Quantity: 3, Date: "2024-06-01",
	}))
	assert.True(t, ledger.IsValidation(err))
	assert.Equal(t, 2.0, f.product(productID).Quantity)
	assert.Empty(t, get[models.StockAdjustment](f, models.StockAdjustments))
}

func TestStockAdjustment_Validation(t *testing.T) {
	f := newFixture(t)
	productID := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice"}))

	bad := []StockAdjustmentInput{
		{ProductID: productID, Type: "shrink", Quantity: 1, Date: "2024-06-01"},
		{ProductID: productID, Type: models.AdjustmentIncrease, Quantity: 0, Date: "2024-06-01"},
		{ProductID: productID, Type: models.AdjustmentIncrease, Quantity: 1, UnitCostUSD: -1, Date: "2024-06-01"},
		{ProductID: productID, Type: models.AdjustmentIncrease, Quantity: 1},
	}
	for _, in := range bad {
		assert.True(t, ledger.IsValidation(f.failed(f.svc.CreateStockAdjustment(f.ctx, in))), "%+v", in)
	}
	assert.True(t, IsNotFound(f.failed(f.svc.CreateStockAdjustment(f.ctx, StockAdjustmentInput{
		ProductID: "ghost", Type: models.AdjustmentIncrease, Quantity: 1, Date: "2024-06-01",
	}))))
}
