package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"tracker/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize inventory, supplier balances, partners and cash",
	Long: `Report derives a summary from the ledgers of the data file: inventory at
weighted-average cost, supplier balances and unallocated payments, partner
equity, open containers and the cash position.`,
	Example: `  tracker report
  tracker report --format pretty
  tracker report --format yaml > summary.yaml`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("format", "f", string(report.FormatText), "Output format: text, json, yaml, markdown or pretty")
}

func runReport(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	_, m, err := openStore(cmd)
	if err != nil {
		return err
	}

	summary, err := report.ForManager(m)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return report.Encode(cmd.OutOrStdout(), summary, format)
}
