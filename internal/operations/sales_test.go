package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/ledger"
	"tracker/internal/models"
)

func TestSale_DebitsStockAndBooksProfit(t *testing.T) {
	f := newFixture(t)
	rice := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice", Quantity: 10, CostPerBagUSD: 6}))
	beans := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Beans", Quantity: 5, CostPerBagUSD: 2}))

	id := f.ok(f.svc.CreateSale(f.ctx, SaleInput{
		Customer: "Market",
		Date:     "2024-06-03",
		Items: []SaleItemInput{
			{ProductID: rice, QuantityBags: 4, PricePerBagUSD: 9},
			{ProductID: beans, QuantityBags: 5, PricePerBagUSD: 3},
		},
	}))

	sale := find(f, models.Sales, func(s models.Sale) bool { return s.ID == id })
	assert.Equal(t, 51.0, sale.TotalUSD)
	assert.Equal(t, 34.0, sale.TotalCostUSD)
	assert.Equal(t, 17.0, sale.ProfitUSD)
	assert.Equal(t, 6.0, f.product(rice).Quantity)
	assert.Zero(t, f.product(beans).Quantity)
	assert.Equal(t, 51.0, f.cashBalance())

	f.ok(f.svc.DeleteSale(f.ctx, id))
	assert.Equal(t, 10.0, f.product(rice).Quantity)
	assert.InDelta(t, 6.0, f.product(rice).CostPerBagUSD, ledger.Epsilon)
	assert.Equal(t, 5.0, f.product(beans).Quantity)
	assert.InDelta(t, 2.0, f.product(beans).CostPerBagUSD, ledger.Epsilon)
	assert.Empty(t, get[models.CashTransaction](f, models.CashTransactions))
}

func TestSale_OversellRejectsWholeSale(t *testing.T) {
	f := newFixture(t)
	rice := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Rice", Quantity: 10}))
	beans := f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "Beans", Quantity: 1}))

	err := f.failed(f.svc.CreateSale(f.ctx, SaleInput{
		Date: "2024-06-03",
		Items: []SaleItemInput{
			{ProductID: rice, QuantityBags: 4, PricePerBagUSD: 9},
			{ProductID: beans, QuantityBags: 2, PricePerBagUSD: 3},
		},
	}))
	require.True(t, ledger.IsValidation(err))
	assert.Equal(t, 10.0, f.product(rice).Quantity)
	assert.Empty(t, get[models.Sale](f, models.Sales))
}

func TestExpenses(t *testing.T) {
	f := newFixture(t)

	id := f.ok(f.svc.CreateExpense(f.ctx, ExpenseInput{Category: "transport", Description: "truck", AmountUSD: 30, Date: "2024-06-02"}))
	f.ok(f.svc.CreateExpense(f.ctx, ExpenseInput{Category: "rent", AmountUSD: 100, Date: "2024-06-01"}))
	assert.Equal(t, -130.0, f.cashBalance())

	cash := find(f, models.CashTransactions, func(c models.CashTransaction) bool { return c.RelatedID == id })
	assert.Equal(t, "transport: truck", cash.Description)
	assert.Equal(t, -130.0, cash.Balance, "later date closes the running balance")

	f.ok(f.svc.DeleteExpense(f.ctx, id))
	assert.Equal(t, -100.0, f.cashBalance())
	assert.True(t, ledger.IsValidation(f.failed(f.svc.CreateExpense(f.ctx, ExpenseInput{Category: "rent", AmountUSD: -1, Date: "2024-06-01"}))))
}
