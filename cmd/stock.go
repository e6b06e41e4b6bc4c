package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/models"
	"tracker/internal/operations"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Correct product stock outside of containers and sales",
}

var stockAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Increase or decrease the stock of a product",
	Long: `An increase is valued at --unit-cost, or at the product's current cost when
omitted, and moves the weighted-average cost. A decrease only removes bags.
--cash records a signed cash movement caused by the adjustment.`,
	Example: `  tracker stock adjust --product 0190c6a2-... --type decrease --quantity 3 --reason "water damage"
  tracker stock adjust --product 0190c6a2-... --type increase --quantity 20 --unit-cost 31 --cash -620`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in operations.StockAdjustmentInput
		ok, err := readInput(cmd, &in)
		if err != nil {
			return err
		}
		if !ok {
			f := cmd.Flags()
			in.ProductID, _ = f.GetString("product")
			kind, _ := f.GetString("type")
			in.Type = models.AdjustmentType(kind)
			in.Quantity, _ = f.GetFloat64("quantity")
			in.UnitCostUSD, _ = f.GetFloat64("unit-cost")
			in.CashAmountUSD, _ = f.GetFloat64("cash")
			in.Reason, _ = f.GetString("reason")
			in.Date, _ = f.GetString("date")
		}
		return runOperation(cmd, "stock", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateStockAdjustment(ctx, in)
		})
	},
}

var stockRemoveAdjustCmd = &cobra.Command{
	Use:   "rm-adjust <id>",
	Short: "Delete a stock adjustment, undoing its stock and cash effect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "stock", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteStockAdjustment(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockAdjustCmd, stockRemoveAdjustCmd)

	addInputFlags(stockAdjustCmd)
	stockAdjustCmd.Flags().String("product", "", "Product ID")
	stockAdjustCmd.Flags().String("type", string(models.AdjustmentDecrease), "increase or decrease")
	stockAdjustCmd.Flags().Float64("quantity", 0, "Number of bags")
	stockAdjustCmd.Flags().Float64("unit-cost", 0, "USD cost per bag of an increase")
	stockAdjustCmd.Flags().Float64("cash", 0, "Signed cash movement in USD")
	stockAdjustCmd.Flags().String("reason", "", "Reason for the adjustment")
	stockAdjustCmd.Flags().String("date", today(), "Adjustment date (YYYY-MM-DD)")
}
