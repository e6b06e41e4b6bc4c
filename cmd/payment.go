package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/operations"
)

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Record supplier payments",
	Long: `A payment is EUR sent to a supplier, bought with USD at an exchange rate
plus a bank commission. Its unallocated EUR can be assigned to containers.`,
}

var paymentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a payment",
	Example: `  tracker payment create --supplier 0190c6a2-... --date 2024-05-02 --eur 5000 --rate 1.08 --commission 0.5
  tracker payment create --json '{"supplierId":"...","date":"2024-05-02","amountEUR":5000,"exchangeRate":1.08}'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := paymentInput(cmd)
		if err != nil {
			return err
		}
		return runOperation(cmd, "payment", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreatePayment(ctx, in)
		})
	},
}

var paymentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a payment; allocations are rescaled and containers repriced",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := paymentInput(cmd)
		if err != nil {
			return err
		}
		return runOperation(cmd, "payment", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.UpdatePayment(ctx, args[0], in)
		})
	},
}

var paymentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an unallocated payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "payment", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeletePayment(ctx, args[0])
		})
	},
}

func paymentInput(cmd *cobra.Command) (operations.PaymentInput, error) {
	var in operations.PaymentInput
	if ok, err := readInput(cmd, &in); ok || err != nil {
		return in, err
	}
	f := cmd.Flags()
	in.SupplierID, _ = f.GetString("supplier")
	in.Date, _ = f.GetString("date")
	in.AmountEUR, _ = f.GetFloat64("eur")
	in.ExchangeRate, _ = f.GetFloat64("rate")
	in.CommissionPercent, _ = f.GetFloat64("commission")
	in.Description, _ = f.GetString("description")
	return in, nil
}

func init() {
	rootCmd.AddCommand(paymentCmd)
	paymentCmd.AddCommand(paymentCreateCmd, paymentUpdateCmd, paymentDeleteCmd)

	for _, c := range []*cobra.Command{paymentCreateCmd, paymentUpdateCmd} {
		addInputFlags(c)
		c.Flags().String("supplier", "", "Supplier ID")
		c.Flags().String("date", today(), "Payment date (YYYY-MM-DD)")
		c.Flags().Float64("eur", 0, "Amount in EUR")
		c.Flags().Float64("rate", 0, "USD per EUR exchange rate")
		c.Flags().Float64("commission", 0, "Bank commission in percent")
		c.Flags().String("description", "", "Free text description")
	}
}
