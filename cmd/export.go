package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"tracker/internal/logger"
	"tracker/internal/report"
	"tracker/internal/sheets"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the report to Google Sheets",
	Long: `Export writes the report summary to the Inventory, Suppliers and Cash sheets
of a Google spreadsheet, creating the sheets when they are missing. Existing
rows below the header are replaced.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL (or --sheet-url)`,
	Example: `  tracker export
  tracker export --sheet-url https://docs.google.com/spreadsheets/d/1AbC.../edit`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("sheet-url", "", "Google Sheets URL (overrides GOOGLE_SHEET_URL)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")
	ctx := cmd.Context()

	cfg, m, err := openStore(cmd)
	if err != nil {
		return err
	}

	sheetURL, _ := cmd.Flags().GetString("sheet-url")
	if sheetURL == "" {
		sheetURL = cfg.GoogleSheetURL
	}
	if sheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable or --sheet-url is required")
	}

	summary, err := report.ForManager(m)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	sheetsService, err := sheets.NewSheetsService(ctx, sheetURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}

	if err := sheetsService.WriteReport(ctx, summary); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	log.Info().Str("data_file", m.Path()).Msg("Report exported")
	fmt.Fprintln(cmd.OutOrStdout(), "Report exported to", sheetURL)
	return nil
}
