package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/ledger"
	"tracker/internal/models"
)

type containerFixture struct {
	*fixture
	supplierID string
	productID  string
	paymentID  string
}

// newContainerFixture seeds supplier S, product P with no stock and a
// €50 payment bought at parity.
func newContainerFixture(t *testing.T) *containerFixture {
	f := newFixture(t)
	cf := &containerFixture{fixture: f}
	cf.supplierID = f.ok(f.svc.CreateSupplier(f.ctx, SupplierInput{Name: "S"}))
	cf.productID = f.ok(f.svc.CreateProduct(f.ctx, ProductInput{Name: "P"}))
	cf.paymentID = f.ok(f.svc.CreatePayment(f.ctx, PaymentInput{
		SupplierID: cf.supplierID, Date: "2024-06-01", AmountEUR: 50, ExchangeRate: 1,
	}))
	return cf
}

func (cf *containerFixture) input(customs float64) ContainerInput {
	return ContainerInput{
		SupplierID:       cf.supplierID,
		Date:             "2024-06-10",
		ProductLines:     []ProductLineInput{{ProductID: cf.productID, QuantityBags: 10, PriceEUR: 5}},
		CustomsDutiesUSD: customs,
		Allocations:      []AllocationInput{{PaymentID: cf.paymentID, AmountEUR: 50}},
	}
}

func TestContainerLifecycle(t *testing.T) {
	f := newContainerFixture(t)

	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(0)))
	c := f.container(id)
	assert.Equal(t, 50.0, c.GrandTotalEUR)
	assert.Equal(t, models.PaymentPaid, c.PaymentStatus)
	assert.Equal(t, models.CustomsPending, c.CustomsStatus)
	assert.Equal(t, models.ContainerOpen, c.ContainerStatus)
	assert.False(t, c.StockCredited())
	assert.Zero(t, f.product(f.productID).Quantity)
	assert.Zero(t, f.payment(f.paymentID).UnallocatedEUR)

	f.ok(f.svc.UpdateContainer(f.ctx, id, f.input(10)))
	c = f.container(id)
	assert.Equal(t, models.CustomsPaid, c.CustomsStatus)
	assert.Equal(t, models.ContainerClosed, c.ContainerStatus)
	require.True(t, c.StockCredited())
	assert.Equal(t, 10.0, c.QuantityAddedToStock[f.productID].QuantityAdded)

	p := f.product(f.productID)
	assert.Equal(t, 10.0, p.Quantity)
	assert.InDelta(t, 6.0, p.CostPerBagUSD, ledger.Epsilon)

	// supplier ledger: +50 payment, -50 container
	assert.InDelta(t, 0.0, ledger.SupplierBalance(get[models.SupplierLedgerEntry](f.fixture, models.SupplierLedger), f.supplierID), ledger.Epsilon)
}

func TestContainer_StockCreditFiresOnce(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(10)))
	require.Equal(t, 10.0, f.product(f.productID).Quantity)
	snapshot := f.container(id).QuantityAddedToStock

	// re-saving the closed container changes nothing
	f.ok(f.svc.UpdateContainer(f.ctx, id, f.input(10)))
	assert.Equal(t, snapshot, f.container(id).QuantityAddedToStock)
	assert.Equal(t, 10.0, f.product(f.productID).Quantity)

	// a cost correction reprices without re-crediting
	f.ok(f.svc.UpdateContainer(f.ctx, id, f.input(20)))
	c := f.container(id)
	assert.Equal(t, 10.0, c.QuantityAddedToStock[f.productID].QuantityAdded)
	assert.InDelta(t, 7.0, c.QuantityAddedToStock[f.productID].UnitCostUSD, ledger.Epsilon)
	p := f.product(f.productID)
	assert.Equal(t, 10.0, p.Quantity)
	assert.InDelta(t, 7.0, p.CostPerBagUSD, ledger.Epsilon)
}

func TestContainer_RepricedAfterPartialSale(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(10)))
	f.ok(f.svc.CreateSale(f.ctx, SaleInput{Date: "2024-06-11", Items: []SaleItemInput{{ProductID: f.productID, QuantityBags: 5, PricePerBagUSD: 9}}}))
	require.Equal(t, 5.0, f.product(f.productID).Quantity)

	f.ok(f.svc.UpdateContainer(f.ctx, id, f.input(20)))
	assert.InDelta(t, 7.0, f.container(id).QuantityAddedToStock[f.productID].UnitCostUSD, ledger.Epsilon)
	p := f.product(f.productID)
	assert.Equal(t, 5.0, p.Quantity)
	assert.InDelta(t, 7.0, p.CostPerBagUSD, ledger.Epsilon)

	// a payment rate change reprices the same container: 55 paid + 20 customs
	f.ok(f.svc.UpdatePayment(f.ctx, f.paymentID, PaymentInput{
		SupplierID: f.supplierID, Date: "2024-06-01", AmountEUR: 50, ExchangeRate: 1.1,
	}))
	p = f.product(f.productID)
	assert.Equal(t, 5.0, p.Quantity)
	assert.InDelta(t, 7.5, p.CostPerBagUSD, ledger.Epsilon)
}

func TestContainer_QuantitiesLockedAfterCredit(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(10)))

	in := f.input(10)
	in.ProductLines[0].QuantityBags = 12
	err := f.failed(f.svc.UpdateContainer(f.ctx, id, in))
	assert.True(t, ledger.IsValidation(err))
	assert.Equal(t, 10.0, f.product(f.productID).Quantity)
}

func TestContainer_OpenContainerIsFreelyEdited(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(0)))

	in := f.input(0)
	in.ProductLines[0].QuantityBags = 8
	in.Allocations[0].AmountEUR = 30
	f.ok(f.svc.UpdateContainer(f.ctx, id, in))

	c := f.container(id)
	assert.Equal(t, 40.0, c.GrandTotalEUR)
	assert.Equal(t, models.PaymentPartial, c.PaymentStatus)
	assert.InDelta(t, 20.0, f.payment(f.paymentID).UnallocatedEUR, ledger.Epsilon)

	entries := get[models.SupplierLedgerEntry](f.fixture, models.SupplierLedger)
	assert.Len(t, entries, 2)
	assert.InDelta(t, 10.0, ledger.SupplierBalance(entries, f.supplierID), ledger.Epsilon)
}

func TestContainer_AllocationMovesBetweenPayments(t *testing.T) {
	f := newContainerFixture(t)
	second := f.ok(f.svc.CreatePayment(f.ctx, PaymentInput{
		SupplierID: f.supplierID, Date: "2024-06-02", AmountEUR: 80, ExchangeRate: 1.25,
	}))
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(0)))

	in := f.input(0)
	in.Allocations = []AllocationInput{{PaymentID: second, AmountEUR: 50}}
	f.ok(f.svc.UpdateContainer(f.ctx, id, in))

	assert.Equal(t, 50.0, f.payment(f.paymentID).UnallocatedEUR)
	assert.Empty(t, f.payment(f.paymentID).Allocations)
	assert.InDelta(t, 30.0, f.payment(second).UnallocatedEUR, ledger.Epsilon)
	c := f.container(id)
	require.Len(t, c.PaymentAllocations, 1)
	assert.InDelta(t, 62.5, c.PaymentAllocations[0].AmountUSD, ledger.Epsilon)
}

func TestContainer_OverAllocationRejected(t *testing.T) {
	f := newContainerFixture(t)
	in := f.input(0)
	in.Allocations[0].AmountEUR = 60

	err := f.failed(f.svc.CreateContainer(f.ctx, in))
	assert.True(t, ledger.IsValidation(err))
	assert.Empty(t, get[models.Container](f.fixture, models.Containers))
	assert.Equal(t, 50.0, f.payment(f.paymentID).UnallocatedEUR)
}

func TestContainer_ReferencesChecked(t *testing.T) {
	f := newContainerFixture(t)

	in := f.input(0)
	in.ProductLines[0].ProductID = "ghost"
	assert.True(t, IsNotFound(f.failed(f.svc.CreateContainer(f.ctx, in))))

	other := f.ok(f.svc.CreateSupplier(f.ctx, SupplierInput{Name: "Other"}))
	in = f.input(0)
	in.SupplierID = other
	assert.True(t, ledger.IsValidation(f.failed(f.svc.CreateContainer(f.ctx, in))))
}

func TestDeleteContainer_ReversesEverything(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(10)))
	require.Equal(t, 10.0, f.product(f.productID).Quantity)

	f.ok(f.svc.DeleteContainer(f.ctx, id))

	p := f.product(f.productID)
	assert.Zero(t, p.Quantity)
	assert.Zero(t, p.CostPerBagUSD)
	pay := f.payment(f.paymentID)
	assert.Empty(t, pay.Allocations)
	assert.Equal(t, 50.0, pay.UnallocatedEUR)
	entries := get[models.SupplierLedgerEntry](f.fixture, models.SupplierLedger)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LedgerPayment, entries[0].Type)
	assert.Equal(t, 50.0, entries[0].Balance)
	assert.Empty(t, get[models.Container](f.fixture, models.Containers))
}

func TestDeleteContainer_RefusedWhenStockWasSold(t *testing.T) {
	f := newContainerFixture(t)
	id := f.ok(f.svc.CreateContainer(f.ctx, f.input(10)))
	f.ok(f.svc.CreateSale(f.ctx, SaleInput{Date: "2024-06-11", Items: []SaleItemInput{{ProductID: f.productID, QuantityBags: 4, PricePerBagUSD: 9}}}))

	err := f.failed(f.svc.DeleteContainer(f.ctx, id))
	assert.True(t, ledger.IsValidation(err))
	f.container(id)
	assert.Equal(t, 6.0, f.product(f.productID).Quantity)
}
