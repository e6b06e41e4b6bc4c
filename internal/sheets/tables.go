package sheets

import (
	"time"

	"tracker/internal/report"
)

// Table is one sheet of an export: a header row followed by data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Tables lays a summary out as the sheets written by WriteReport.
func Tables(s *report.Summary, exportedAt time.Time) []Table {
	inventory := Table{
		Name:    "Inventory",
		Headers: []string{"Product ID", "Product", "Bags", "Cost/bag USD", "Value USD"},
	}
	for _, l := range s.Inventory {
		inventory.Rows = append(inventory.Rows, []interface{}{
			l.ProductID, l.Name, l.Quantity, l.CostPerBagUSD, l.ValueUSD,
		})
	}
	inventory.Rows = append(inventory.Rows, []interface{}{"", "Total", "", "", s.InventoryValueUSD})

	suppliers := Table{
		Name:    "Suppliers",
		Headers: []string{"Supplier ID", "Supplier", "Balance EUR", "Unallocated EUR", "Open containers"},
	}
	for _, l := range s.Suppliers {
		suppliers.Rows = append(suppliers.Rows, []interface{}{
			l.SupplierID, l.Name, l.BalanceEUR, l.UnallocatedEUR, l.OpenContainers,
		})
	}

	cash := Table{
		Name:    "Cash",
		Headers: []string{"Metric", "Value"},
		Rows: [][]interface{}{
			{"Balance USD", s.Cash.BalanceUSD},
			{"Inflow USD", s.Cash.InflowUSD},
			{"Outflow USD", s.Cash.OutflowUSD},
			{"Sales USD", s.Cash.SalesUSD},
			{"Gross profit USD", s.Cash.GrossProfit},
			{"Expenses USD", s.Cash.ExpensesUSD},
			{"Open containers", s.Containers.Open},
			{"Outstanding EUR", s.Containers.OutstandingEUR},
			{"Data file", s.DataFile},
			{"Document version", s.DocumentVersion},
			{"Exported at", exportedAt.Format("2006-01-02 15:04:05")},
		},
	}
	for _, p := range s.Partners {
		cash.Rows = append(cash.Rows, []interface{}{"Partner " + p.Name + " USD", p.BalanceUSD})
	}

	return []Table{inventory, suppliers, cash}
}

// columnName converts a 1-based column count into its A1 letter form.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
