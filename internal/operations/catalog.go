package operations

import (
	"context"
	"strings"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// ProductInput is the user-editable part of a product. Quantity and cost
// are only read on creation as opening stock; afterwards they move through
// containers, adjustments and sales.
type ProductInput struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	CostPerBagUSD float64 `json:"costPerBagUSD"`
}

// SupplierInput is the user-editable part of a supplier.
type SupplierInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// PartnerInput is the user-editable part of a partner.
type PartnerInput struct {
	Name string `json:"name"`
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ledger.NewValidationError("name", nil, "is required")
	}
	return name, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) Result {
	const op = "CreateProduct"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		name, err := requireName(in.Name)
		if err != nil {
			return "", err
		}
		if in.Quantity < 0 {
			return "", ledger.NewValidationError("quantity", in.Quantity, "must not be negative")
		}
		if in.CostPerBagUSD < 0 {
			return "", ledger.NewValidationError("costPerBagUSD", in.CostPerBagUSD, "must not be negative")
		}
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		p := models.Product{
			ID:            models.NewID(),
			Name:          name,
			Quantity:      ledger.Round(in.Quantity),
			CostPerBagUSD: ledger.Round(in.CostPerBagUSD),
			CreatedAt:     s.stamp(),
		}
		return p.ID, store.Put(b, models.Products, append(products, p))
	})
}

// UpdateProduct renames a product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) Result {
	const op = "UpdateProduct"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		name, err := requireName(in.Name)
		if err != nil {
			return "", err
		}
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		i := indexOf(products, func(p *models.Product) bool { return p.ID == id })
		if i < 0 {
			return "", notFound(op, models.Products, id)
		}
		products[i].Name = name
		return id, store.Put(b, models.Products, products)
	})
}

// DeleteProduct removes a product no container, sale or adjustment refers to.
func (s *Service) DeleteProduct(ctx context.Context, id string) Result {
	const op = "DeleteProduct"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		products, err := store.Get[models.Product](b, models.Products)
		if err != nil {
			return "", err
		}
		if indexOf(products, func(p *models.Product) bool { return p.ID == id }) < 0 {
			return "", notFound(op, models.Products, id)
		}

		containers, err := store.Get[models.Container](b, models.Containers)
		if err != nil {
			return "", err
		}
		for _, c := range containers {
			for _, line := range c.ProductLines {
				if line.ProductID == id {
					return "", ledger.Invalidf("product is received in container %s", c.ID)
				}
			}
		}
		sales, err := store.Get[models.Sale](b, models.Sales)
		if err != nil {
			return "", err
		}
		for _, sale := range sales {
			for _, item := range sale.Items {
				if item.ProductID == id {
					return "", ledger.Invalidf("product is sold in sale %s", sale.ID)
				}
			}
		}
		adjustments, err := store.Get[models.StockAdjustment](b, models.StockAdjustments)
		if err != nil {
			return "", err
		}
		if i := indexOf(adjustments, func(a *models.StockAdjustment) bool { return a.ProductID == id }); i >= 0 {
			return "", ledger.Invalidf("product has stock adjustment %s", adjustments[i].ID)
		}

		products = removeWhere(products, func(p *models.Product) bool { return p.ID == id })
		return id, store.Put(b, models.Products, products)
	})
}

func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) Result {
	const op = "CreateSupplier"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		name, err := requireName(in.Name)
		if err != nil {
			return "", err
		}
		suppliers, err := store.Get[models.Supplier](b, models.Suppliers)
		if err != nil {
			return "", err
		}
		sup := models.Supplier{
			ID:        models.NewID(),
			Name:      name,
			Country:   strings.TrimSpace(in.Country),
			CreatedAt: s.stamp(),
		}
		return sup.ID, store.Put(b, models.Suppliers, append(suppliers, sup))
	})
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, in SupplierInput) Result {
	const op = "UpdateSupplier"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		name, err := requireName(in.Name)
		if err != nil {
			return "", err
		}
		suppliers, err := store.Get[models.Supplier](b, models.Suppliers)
		if err != nil {
			return "", err
		}
		i := indexOf(suppliers, func(sup *models.Supplier) bool { return sup.ID == id })
		if i < 0 {
			return "", notFound(op, models.Suppliers, id)
		}
		suppliers[i].Name = name
		suppliers[i].Country = strings.TrimSpace(in.Country)
		return id, store.Put(b, models.Suppliers, suppliers)
	})
}

// DeleteSupplier removes a supplier without containers or payments.
func (s *Service) DeleteSupplier(ctx context.Context, id string) Result {
	const op = "DeleteSupplier"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		suppliers, err := store.Get[models.Supplier](b, models.Suppliers)
		if err != nil {
			return "", err
		}
		if indexOf(suppliers, func(sup *models.Supplier) bool { return sup.ID == id }) < 0 {
			return "", notFound(op, models.Suppliers, id)
		}
		containers, err := store.Get[models.Container](b, models.Containers)
		if err != nil {
			return "", err
		}
		if indexOf(containers, func(c *models.Container) bool { return c.SupplierID == id }) >= 0 {
			return "", ledger.Invalidf("supplier has containers")
		}
		payments, err := store.Get[models.Payment](b, models.Payments)
		if err != nil {
			return "", err
		}
		if indexOf(payments, func(p *models.Payment) bool { return p.SupplierID == id }) >= 0 {
			return "", ledger.Invalidf("supplier has payments")
		}
		suppliers = removeWhere(suppliers, func(sup *models.Supplier) bool { return sup.ID == id })
		return id, store.Put(b, models.Suppliers, suppliers)
	})
}

func (s *Service) CreatePartner(ctx context.Context, in PartnerInput) Result {
	const op = "CreatePartner"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		name, err := requireName(in.Name)
		if err != nil {
			return "", err
		}
		partners, err := store.Get[models.Partner](b, models.Partners)
		if err != nil {
			return "", err
		}
		p := models.Partner{ID: models.NewID(), Name: name, CreatedAt: s.stamp()}
		return p.ID, store.Put(b, models.Partners, append(partners, p))
	})
}

// DeletePartner removes a partner without transactions.
func (s *Service) DeletePartner(ctx context.Context, id string) Result {
	const op = "DeletePartner"
	return s.run(ctx, op, func(b *store.Batch) (string, error) {
		partners, err := store.Get[models.Partner](b, models.Partners)
		if err != nil {
			return "", err
		}
		if indexOf(partners, func(p *models.Partner) bool { return p.ID == id }) < 0 {
			return "", notFound(op, models.Partners, id)
		}
		txs, err := store.Get[models.PartnerTransaction](b, models.PartnerTransactions)
		if err != nil {
			return "", err
		}
		if indexOf(txs, func(t *models.PartnerTransaction) bool { return t.PartnerID == id }) >= 0 {
			return "", ledger.Invalidf("partner has transactions")
		}
		partners = removeWhere(partners, func(p *models.Partner) bool { return p.ID == id })
		return id, store.Put(b, models.Partners, partners)
	})
}
