package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/operations"
)

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Record and delete sales",
}

var saleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a sale",
	Long: `Sale input is a JSON object:

  {
    "customer": "Market stall 12",
    "date": "2024-06-03",
    "items": [{"productId": "...", "quantityBags": 10, "pricePerBagUSD": 42}]
  }

Stock is debited at the current cost of each product and the proceeds are
booked as cash.`,
	Example: `  tracker sale create --file sale.json`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in operations.SaleInput
		if err := requireInput(cmd, &in); err != nil {
			return err
		}
		return runOperation(cmd, "sale", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateSale(ctx, in)
		})
	},
}

var saleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sale, restocking its items at their recorded cost",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "sale", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteSale(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(saleCmd)
	saleCmd.AddCommand(saleCreateCmd, saleDeleteCmd)
	addInputFlags(saleCreateCmd)
}
