package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"
)

// Format selects how a Summary is written.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	// FormatPretty is markdown rendered for the terminal.
	FormatPretty Format = "pretty"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatPretty:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (text, json, yaml, markdown or pretty)", name)
	}
}

// Encode writes s to w in format f.
func Encode(w io.Writer, s *Summary, f Format) error {
	const op = "report.Encode"

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return enc.Close()
	case FormatMarkdown:
		md, err := Markdown(s)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = io.WriteString(w, md)
		return err
	case FormatPretty:
		out, err := Render(s, 100)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatText, "":
		return writeText(w, s)
	default:
		return fmt.Errorf("%s: unknown format %q", op, f)
	}
	return nil
}

func writeText(w io.Writer, s *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Data file:\t%s (version %d)\n\n", s.DataFile, s.DocumentVersion)

	fmt.Fprintln(tw, "PRODUCT\tBAGS\tCOST/BAG\tVALUE")
	for _, l := range s.Inventory {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Name, qty(l.Quantity), usd(l.CostPerBagUSD), usd(l.ValueUSD))
	}
	fmt.Fprintf(tw, "Total\t\t\t%s\n\n", usd(s.InventoryValueUSD))

	fmt.Fprintln(tw, "SUPPLIER\tBALANCE\tUNALLOCATED\tOPEN CONTAINERS")
	for _, l := range s.Suppliers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", l.Name, eur(l.BalanceEUR), eur(l.UnallocatedEUR), l.OpenContainers)
	}
	fmt.Fprintln(tw)

	if len(s.Partners) > 0 {
		fmt.Fprintln(tw, "PARTNER\tBALANCE")
		for _, l := range s.Partners {
			fmt.Fprintf(tw, "%s\t%s\n", l.Name, usd(l.BalanceUSD))
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "Containers:\t%d open, %d closed, %s outstanding\n", s.Containers.Open, s.Containers.Closed, eur(s.Containers.OutstandingEUR))
	fmt.Fprintf(tw, "Cash:\t%s (in %s, out %s)\n", usd(s.Cash.BalanceUSD), usd(s.Cash.InflowUSD), usd(s.Cash.OutflowUSD))
	fmt.Fprintf(tw, "Sales:\t%s, gross profit %s, expenses %s\n", usd(s.Cash.SalesUSD), usd(s.Cash.GrossProfit), usd(s.Cash.ExpensesUSD))
	return tw.Flush()
}

func qty(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", q), "0"), ".")
}

const markdownTemplate = `# Business summary

{{if .DataFile}}Data file ` + "`{{.DataFile}}`" + ` version {{.DocumentVersion}}

{{end}}## Inventory

| Product | Bags | Cost/bag | Value |
|---|---:|---:|---:|
{{range .Inventory}}| {{.Name}} | {{qty .Quantity}} | {{usd .CostPerBagUSD}} | {{usd .ValueUSD}} |
{{end}}| **Total** | | | **{{usd .InventoryValueUSD}}** |

## Suppliers

| Supplier | Balance | Unallocated | Open containers |
|---|---:|---:|---:|
{{range .Suppliers}}| {{.Name}} | {{eur .BalanceEUR}} | {{eur .UnallocatedEUR}} | {{.OpenContainers}} |
{{end}}
{{if .Partners}}## Partners

| Partner | Balance |
|---|---:|
{{range .Partners}}| {{.Name}} | {{usd .BalanceUSD}} |
{{end}}
{{end}}## Cash

- Balance: **{{usd .Cash.BalanceUSD}}** ({{.Cash.Transactions}} transactions)
- Sales {{usd .Cash.SalesUSD}}, gross profit {{usd .Cash.GrossProfit}}, expenses {{usd .Cash.ExpensesUSD}}
- Containers: {{.Containers.Open}} open, {{.Containers.Closed}} closed, {{eur .Containers.OutstandingEUR}} outstanding
`

var markdown = template.Must(template.New("summary").Funcs(template.FuncMap{
	"usd": usd,
	"eur": eur,
	"qty": qty,
}).Parse(markdownTemplate))

// Markdown renders s as a markdown document.
func Markdown(s *Summary) (string, error) {
	var b strings.Builder
	if err := markdown.Execute(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render renders s as markdown styled for a terminal of the given width.
func Render(s *Summary, width int) (string, error) {
	md, err := Markdown(s)
	if err != nil {
		return "", err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
