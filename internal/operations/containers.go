package operations

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// ContainerInput is the form state of a container.
type ContainerInput struct {
	SupplierID       string             `json:"supplierId"`
	Reference        string             `json:"reference"`
	Date             string             `json:"date"`
	ProductLines     []ProductLineInput `json:"productLines"`
	FreightCostEUR   float64            `json:"freightCostEUR"`
	CustomsDutiesUSD float64            `json:"customsDutiesUSD"`
	Allocations      []AllocationInput  `json:"paymentAllocations"`
}

type ProductLineInput struct {
	ProductID    string  `json:"productId"`
	QuantityBags float64 `json:"quantityBags"`
	PriceEUR     float64 `json:"priceEUR"`
}

// AllocationInput earmarks part of a payment for the container.
type AllocationInput struct {
	PaymentID string  `json:"paymentId"`
	AmountEUR float64 `json:"amountEUR"`
}

// containerTx holds the collections every container recipe touches.
type containerTx struct {
	b          *store.Batch
	suppliers  []models.Supplier
	products   []models.Product
	containers []models.Container
	payments   []models.Payment
	entries    []models.SupplierLedgerEntry

	productsChanged bool
}

func loadContainerTx(b *store.Batch) (*containerTx, error) {
	t := &containerTx{b: b}
	var err error
	if t.suppliers, err = store.Get[models.Supplier](b, models.Suppliers); err != nil {
		return nil, err
	}
	if t.products, err = store.Get[models.Product](b, models.Products); err != nil {
		return nil, err
	}
	if t.containers, err = store.Get[models.Container](b, models.Containers); err != nil {
		return nil, err
	}
	if t.payments, err = store.Get[models.Payment](b, models.Payments); err != nil {
		return nil, err
	}
	if t.entries, err = store.Get[models.SupplierLedgerEntry](b, models.SupplierLedger); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *containerTx) save() error {
	if t.productsChanged {
		if err := store.Put(t.b, models.Products, t.products); err != nil {
			return err
		}
	}
	if err := store.Put(t.b, models.Containers, t.containers); err != nil {
		return err
	}
	if err := store.Put(t.b, models.Payments, t.payments); err != nil {
		return err
	}
	return store.Put(t.b, models.SupplierLedger, t.entries)
}

func (t *containerTx) payment(id string) int {
	return indexOf(t.payments, func(p *models.Payment) bool { return p.ID == id })
}

// buildContainer turns form input into a container record and checks
// everything it references.
func (t *containerTx) buildContainer(op string, in ContainerInput, base models.Container) (models.Container, error) {
	c := base
	c.SupplierID = in.SupplierID
	c.Reference = in.Reference
	c.Date = in.Date
	c.FreightCostEUR = in.FreightCostEUR
	c.CustomsDutiesUSD = in.CustomsDutiesUSD
	c.ProductLines = make([]models.ProductLine, len(in.ProductLines))
	for i, l := range in.ProductLines {
		c.ProductLines[i] = models.ProductLine{ProductID: l.ProductID, QuantityBags: l.QuantityBags, PriceEUR: l.PriceEUR}
	}
	c.PaymentAllocations = make([]models.ContainerAllocation, len(in.Allocations))
	for i, a := range in.Allocations {
		c.PaymentAllocations[i] = models.ContainerAllocation{PaymentID: a.PaymentID, AmountEUR: a.AmountEUR}
	}

	if err := ledger.ValidateContainer(c); err != nil {
		return c, err
	}
	if indexOf(t.suppliers, func(s *models.Supplier) bool { return s.ID == c.SupplierID }) < 0 {
		return c, notFound(op, models.Suppliers, c.SupplierID)
	}
	for _, l := range c.ProductLines {
		if indexOf(t.products, func(p *models.Product) bool { return p.ID == l.ProductID }) < 0 {
			return c, notFound(op, models.Products, l.ProductID)
		}
	}
	for _, a := range c.PaymentAllocations {
		i := t.payment(a.PaymentID)
		if i < 0 {
			return c, notFound(op, models.Payments, a.PaymentID)
		}
		if t.payments[i].SupplierID != c.SupplierID {
			return c, ledger.NewValidationError("paymentAllocations.paymentId", a.PaymentID, "belongs to another supplier")
		}
	}
	return c, nil
}

// syncAllocations rewrites the payments affected by moving from the old
// allocation set of container c to its new one, and fills the USD side of
// the container's allocations from the payments.
func (t *containerTx) syncAllocations(c *models.Container, old []models.ContainerAllocation) error {
	next := make(map[string]bool, len(c.PaymentAllocations))
	for _, a := range c.PaymentAllocations {
		next[a.PaymentID] = true
	}
	for _, a := range old {
		if next[a.PaymentID] {
			continue
		}
		if i := t.payment(a.PaymentID); i >= 0 {
			t.payments[i] = ledger.Deallocate(t.payments[i], c.ID)
		}
	}
	for k, a := range c.PaymentAllocations {
		i := t.payment(a.PaymentID)
		p, alloc, err := ledger.Allocate(t.payments[i], c.ID, a.AmountEUR)
		if err != nil {
			return fmt.Errorf("payment %s: %w", a.PaymentID, err)
		}
		p.UpdatedAt = c.UpdatedAt
		t.payments[i] = p
		c.PaymentAllocations[k] = alloc
	}
	return nil
}

// settleStock applies the stock rules to container c whose previous state
// is old: the first close credits stock once; a credited container that is
// closed follows its current unit costs without touching quantities.
func (t *containerTx) settleStock(old, c *models.Container) error {
	switch {
	case !old.StockCredited() && c.ContainerStatus == models.ContainerClosed:
		products, snapshot, err := ledger.CreditStock(t.products, *c)
		if err != nil {
			return err
		}
		t.products, c.QuantityAddedToStock = products, snapshot
		t.productsChanged = true
	case old.StockCredited() && c.ContainerStatus == models.ContainerClosed:
		if !unitCostsChanged(old.QuantityAddedToStock, ledger.ProductUnitCosts(*c)) {
			return nil
		}
		products, snapshot, err := ledger.RepriceStockCredit(t.products, old.QuantityAddedToStock, *c)
		if err != nil {
			return err
		}
		t.products, c.QuantityAddedToStock = products, snapshot
		t.productsChanged = true
	}
	return nil
}

func unitCostsChanged(snapshot map[string]models.StockCredit, costs map[string]float64) bool {
	for id, credit := range snapshot {
		cost, ok := costs[id]
		if !ok || math.Abs(cost-credit.UnitCostUSD) > ledger.Epsilon {
			return true
		}
	}
	return false
}

// lockedQuantities rejects product or quantity changes once stock moved.
func lockedQuantities(old, c models.Container) error {
	if !old.StockCredited() {
		return nil
	}
	before, after := ledger.ProductQuantities(old), ledger.ProductQuantities(c)
	if len(before) != len(after) {
		return ledger.NewValidationError("productLines", nil, "products cannot change once stock has been credited")
	}
	for id, q := range before {
		if math.Abs(after[id]-q) > ledger.Epsilon {
			return ledger.NewValidationError("productLines.quantityBags", after[id],
				"quantities cannot change once stock has been credited")
		}
	}
	return nil
}

// postContainerEntry keeps the container's ledger debit in line with the
// container and recomputes the running balance of every supplier involved.
func (t *containerTx) postContainerEntry(c models.Container, previousSupplier string) {
	i := indexOf(t.entries, func(e *models.SupplierLedgerEntry) bool {
		return e.Type == models.LedgerContainer && e.RelatedContainerID == c.ID
	})
	entry := models.SupplierLedgerEntry{
		ID:                 models.NewID(),
		CreatedAt:          c.UpdatedAt,
		SupplierID:         c.SupplierID,
		Type:               models.LedgerContainer,
		Amount:             -c.GrandTotalEUR,
		Date:               c.Date,
		Description:        containerLabel(c),
		RelatedContainerID: c.ID,
	}
	if i >= 0 {
		entry.ID, entry.CreatedAt = t.entries[i].ID, t.entries[i].CreatedAt
		t.entries[i] = entry
	} else {
		t.entries = append(t.entries, entry)
	}
	ledger.RecomputeSupplierLedger(t.entries, c.SupplierID)
	if previousSupplier != "" && previousSupplier != c.SupplierID {
		ledger.RecomputeSupplierLedger(t.entries, previousSupplier)
	}
}

func containerLabel(c models.Container) string {
	if c.Reference != "" {
		return "Container " + c.Reference
	}
	return "Container " + c.Date
}

// CreateContainer records a shipment, allocates the given payments to it,
// posts the supplier debit and credits stock when the container is closed.
func (s *Service) CreateContainer(ctx context.Context, in ContainerInput) Result {
	const op = "CreateContainer"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		now := s.stamp()
		c, err := t.buildContainer(op, in, models.Container{ID: models.NewID(), CreatedAt: now, UpdatedAt: now})
		if err != nil {
			return "", err
		}
		if err := t.syncAllocations(&c, nil); err != nil {
			return "", err
		}
		c = ledger.ContainerTotals(c)
		if err := t.settleStock(&models.Container{}, &c); err != nil {
			return "", err
		}
		t.postContainerEntry(c, "")
		t.containers = append(t.containers, c)
		return c.ID, t.save()
	})
}

// UpdateContainer applies the new form state of a container.
func (s *Service) UpdateContainer(ctx context.Context, id string, in ContainerInput) Result {
	const op = "UpdateContainer"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		k := indexOf(t.containers, func(c *models.Container) bool { return c.ID == id })
		if k < 0 {
			return "", notFound(op, models.Containers, id)
		}
		old := t.containers[k]

		base := old
		base.UpdatedAt = s.stamp()
		c, err := t.buildContainer(op, in, base)
		if err != nil {
			return "", err
		}
		if err := lockedQuantities(old, c); err != nil {
			return "", err
		}
		if err := t.syncAllocations(&c, old.PaymentAllocations); err != nil {
			return "", err
		}
		c = ledger.ContainerTotals(c)
		if err := t.settleStock(&old, &c); err != nil {
			return "", err
		}
		t.postContainerEntry(c, old.SupplierID)
		t.containers[k] = c
		return id, t.save()
	})
}

// DeleteContainer reverses the container's stock credit, releases its
// payment allocations and removes its ledger debit.
func (s *Service) DeleteContainer(ctx context.Context, id string) Result {
	const op = "DeleteContainer"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		t, err := loadContainerTx(b)
		if err != nil {
			return "", err
		}
		k := indexOf(t.containers, func(c *models.Container) bool { return c.ID == id })
		if k < 0 {
			return "", notFound(op, models.Containers, id)
		}
		c := t.containers[k]

		if c.StockCredited() {
			products, err := ledger.ReverseStockCredit(t.products, c.QuantityAddedToStock)
			if err != nil {
				return "", err
			}
			t.products, t.productsChanged = products, true
		}
		now := s.stamp()
		for _, a := range c.PaymentAllocations {
			if i := t.payment(a.PaymentID); i >= 0 {
				t.payments[i] = ledger.Deallocate(t.payments[i], c.ID)
				t.payments[i].UpdatedAt = now
			}
		}
		t.entries = removeWhere(t.entries, func(e *models.SupplierLedgerEntry) bool {
			return e.Type == models.LedgerContainer && e.RelatedContainerID == c.ID
		})
		ledger.RecomputeSupplierLedger(t.entries, c.SupplierID)
		t.containers = removeWhere(t.containers, func(x *models.Container) bool { return x.ID == id })
		return id, t.save()
	})
}

// refreshContainers recomputes the containers that hold an allocation of
// payment p after its USD amounts changed.
func (t *containerTx) refreshContainers(p models.Payment, now time.Time) error {
	ids := make([]string, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		ids = append(ids, a.ContainerID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		k := indexOf(t.containers, func(c *models.Container) bool { return c.ID == id })
		if k < 0 {
			continue
		}
		old := t.containers[k]
		alloc, _ := ledger.FindAllocation(p, id)

		c := old
		c.PaymentAllocations = append([]models.ContainerAllocation(nil), old.PaymentAllocations...)
		for j := range c.PaymentAllocations {
			if c.PaymentAllocations[j].PaymentID == p.ID {
				c.PaymentAllocations[j].AmountEUR = alloc.AmountEUR
				c.PaymentAllocations[j].AmountUSD = alloc.AmountUSD
			}
		}
		c = ledger.ContainerTotals(c)
		c.UpdatedAt = now
		if err := t.settleStock(&old, &c); err != nil {
			return err
		}
		t.containers[k] = c
	}
	return nil
}
