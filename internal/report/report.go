// Package report derives read models from the collections: inventory
// valuation, supplier balances, partner equity and the cash position.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/store"
)

type Summary struct {
	DataFile        string    `json:"dataFile" yaml:"dataFile"`
	DocumentVersion int64     `json:"documentVersion" yaml:"documentVersion"`
	LastUpdated     time.Time `json:"lastUpdated" yaml:"lastUpdated"`

	Inventory         []StockLine     `json:"inventory" yaml:"inventory"`
	InventoryValueUSD float64         `json:"inventoryValueUSD" yaml:"inventoryValueUSD"`
	Suppliers         []SupplierLine  `json:"suppliers" yaml:"suppliers"`
	Partners          []PartnerLine   `json:"partners" yaml:"partners"`
	Containers        ContainerCounts `json:"containers" yaml:"containers"`
	Cash              CashPosition    `json:"cash" yaml:"cash"`
}

type StockLine struct {
	ProductID     string  `json:"productId" yaml:"productId"`
	Name          string  `json:"name" yaml:"name"`
	Quantity      float64 `json:"quantity" yaml:"quantity"`
	CostPerBagUSD float64 `json:"costPerBagUSD" yaml:"costPerBagUSD"`
	ValueUSD      float64 `json:"valueUSD" yaml:"valueUSD"`
}

// SupplierLine is a supplier account. A negative balance is owed to the supplier.
type SupplierLine struct {
	SupplierID     string  `json:"supplierId" yaml:"supplierId"`
	Name           string  `json:"name" yaml:"name"`
	BalanceEUR     float64 `json:"balanceEUR" yaml:"balanceEUR"`
	OpenContainers int     `json:"openContainers" yaml:"openContainers"`
	UnallocatedEUR float64 `json:"unallocatedEUR" yaml:"unallocatedEUR"`
}

type PartnerLine struct {
	PartnerID  string  `json:"partnerId" yaml:"partnerId"`
	Name       string  `json:"name" yaml:"name"`
	BalanceUSD float64 `json:"balanceUSD" yaml:"balanceUSD"`
}

type ContainerCounts struct {
	Open           int     `json:"open" yaml:"open"`
	Closed         int     `json:"closed" yaml:"closed"`
	OutstandingEUR float64 `json:"outstandingEUR" yaml:"outstandingEUR"`
}

type CashPosition struct {
	BalanceUSD   float64 `json:"balanceUSD" yaml:"balanceUSD"`
	InflowUSD    float64 `json:"inflowUSD" yaml:"inflowUSD"`
	OutflowUSD   float64 `json:"outflowUSD" yaml:"outflowUSD"`
	SalesUSD     float64 `json:"salesUSD" yaml:"salesUSD"`
	GrossProfit  float64 `json:"grossProfitUSD" yaml:"grossProfitUSD"`
	ExpensesUSD  float64 `json:"expensesUSD" yaml:"expensesUSD"`
	Transactions int     `json:"transactions" yaml:"transactions"`
}

type collections struct {
	products   []models.Product
	suppliers  []models.Supplier
	containers []models.Container
	payments   []models.Payment
	entries    []models.SupplierLedgerEntry
	partners   []models.Partner
	partnerTxs []models.PartnerTransaction
	cash       []models.CashTransaction
	sales      []models.Sale
	expenses   []models.Expense
}

func load(r store.Reader) (*collections, error) {
	c := &collections{}
	var err error
	if c.products, err = store.Get[models.Product](r, models.Products); err != nil {
		return nil, err
	}
	if c.suppliers, err = store.Get[models.Supplier](r, models.Suppliers); err != nil {
		return nil, err
	}
	if c.containers, err = store.Get[models.Container](r, models.Containers); err != nil {
		return nil, err
	}
	if c.payments, err = store.Get[models.Payment](r, models.Payments); err != nil {
		return nil, err
	}
	if c.entries, err = store.Get[models.SupplierLedgerEntry](r, models.SupplierLedger); err != nil {
		return nil, err
	}
	if c.partners, err = store.Get[models.Partner](r, models.Partners); err != nil {
		return nil, err
	}
	if c.partnerTxs, err = store.Get[models.PartnerTransaction](r, models.PartnerTransactions); err != nil {
		return nil, err
	}
	if c.cash, err = store.Get[models.CashTransaction](r, models.CashTransactions); err != nil {
		return nil, err
	}
	if c.sales, err = store.Get[models.Sale](r, models.Sales); err != nil {
		return nil, err
	}
	if c.expenses, err = store.Get[models.Expense](r, models.Expenses); err != nil {
		return nil, err
	}
	return c, nil
}

// Build derives a Summary from the collections of r. Balances are summed
// from the ledgers rather than read from stored rollups.
func Build(r store.Reader) (*Summary, error) {
	const op = "report.Build"

	c, err := load(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Summary{
		Inventory: make([]StockLine, 0, len(c.products)),
		Suppliers: make([]SupplierLine, 0, len(c.suppliers)),
		Partners:  make([]PartnerLine, 0, len(c.partners)),
	}

	values := make([]float64, 0, len(c.products))
	for _, p := range c.products {
		value := ledger.Round(p.Quantity * p.CostPerBagUSD)
		values = append(values, value)
		s.Inventory = append(s.Inventory, StockLine{
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      p.Quantity,
			CostPerBagUSD: p.CostPerBagUSD,
			ValueUSD:      value,
		})
	}
	s.InventoryValueUSD = ledger.Sum(values...)
	sort.Slice(s.Inventory, func(i, j int) bool { return lessFold(s.Inventory[i].Name, s.Inventory[j].Name) })

	for _, sup := range c.suppliers {
		line := SupplierLine{
			SupplierID: sup.ID,
			Name:       sup.Name,
			BalanceEUR: ledger.SupplierBalance(c.entries, sup.ID),
		}
		var unallocated []float64
		for _, p := range c.payments {
			if p.SupplierID == sup.ID {
				unallocated = append(unallocated, p.UnallocatedEUR)
			}
		}
		line.UnallocatedEUR = ledger.Sum(unallocated...)
		for _, ct := range c.containers {
			if ct.SupplierID == sup.ID && ct.ContainerStatus != models.ContainerClosed {
				line.OpenContainers++
			}
		}
		s.Suppliers = append(s.Suppliers, line)
	}
	sort.Slice(s.Suppliers, func(i, j int) bool { return lessFold(s.Suppliers[i].Name, s.Suppliers[j].Name) })

	for _, p := range c.partners {
		s.Partners = append(s.Partners, PartnerLine{
			PartnerID: p.ID,
			Name:      p.Name,
			BalanceUSD: ledger.Balance(c.partnerTxs, func(t models.PartnerTransaction) bool {
				return t.PartnerID == p.ID
			}),
		})
	}
	sort.Slice(s.Partners, func(i, j int) bool { return lessFold(s.Partners[i].Name, s.Partners[j].Name) })

	var outstanding []float64
	for _, ct := range c.containers {
		if ct.ContainerStatus == models.ContainerClosed {
			s.Containers.Closed++
		} else {
			s.Containers.Open++
		}
		if due := ledger.Sum(ct.GrandTotalEUR, -ct.TotalEURPaid); due > 0 {
			outstanding = append(outstanding, due)
		}
	}
	s.Containers.OutstandingEUR = ledger.Sum(outstanding...)

	var in, out []float64
	for _, t := range c.cash {
		if t.Amount >= 0 {
			in = append(in, t.Amount)
		} else {
			out = append(out, -t.Amount)
		}
	}
	s.Cash.Transactions = len(c.cash)
	s.Cash.InflowUSD = ledger.Sum(in...)
	s.Cash.OutflowUSD = ledger.Sum(out...)
	s.Cash.BalanceUSD = ledger.Balance[models.CashTransaction](c.cash, nil)

	var sales, profit, expenses []float64
	for _, sale := range c.sales {
		sales = append(sales, sale.TotalUSD)
		profit = append(profit, sale.ProfitUSD)
	}
	for _, e := range c.expenses {
		expenses = append(expenses, e.AmountUSD)
	}
	s.Cash.SalesUSD = ledger.Sum(sales...)
	s.Cash.GrossProfit = ledger.Sum(profit...)
	s.Cash.ExpensesUSD = ledger.Sum(expenses...)

	return s, nil
}

// ForManager builds the summary of the manager's cache and stamps it with
// the active data file and document metadata.
func ForManager(m *store.Manager) (*Summary, error) {
	s, err := Build(m)
	if err != nil {
		return nil, err
	}
	meta := m.Metadata()
	s.DataFile = m.Path()
	s.DocumentVersion = meta.Version
	s.LastUpdated = meta.LastUpdated
	return s, nil
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
