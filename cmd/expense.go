package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/operations"
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record operating expenses paid in cash",
}

var expenseAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Record an expense",
	Example: `  tracker expense add --category transport --amount 180 --description "truck to warehouse"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in operations.ExpenseInput
		ok, err := readInput(cmd, &in)
		if err != nil {
			return err
		}
		if !ok {
			f := cmd.Flags()
			in.Category, _ = f.GetString("category")
			in.AmountUSD, _ = f.GetFloat64("amount")
			in.Description, _ = f.GetString("description")
			in.Date, _ = f.GetString("date")
		}
		return runOperation(cmd, "expense", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateExpense(ctx, in)
		})
	},
}

var expenseRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense and its cash movement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "expense", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteExpense(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(expenseCmd)
	expenseCmd.AddCommand(expenseAddCmd, expenseRemoveCmd)

	addInputFlags(expenseAddCmd)
	expenseAddCmd.Flags().String("category", "", "Expense category")
	expenseAddCmd.Flags().Float64("amount", 0, "Amount in USD")
	expenseAddCmd.Flags().String("description", "", "Free text description")
	expenseAddCmd.Flags().String("date", today(), "Expense date (YYYY-MM-DD)")
}
