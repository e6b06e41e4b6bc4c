package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/models"
	"tracker/internal/operations"
)

var partnerCmd = &cobra.Command{
	Use:   "partner",
	Short: "Manage partners and their cash injections and withdrawals",
}

var partnerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a partner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "partner", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreatePartner(ctx, operations.PartnerInput{Name: args[0]})
		})
	},
}

var partnerRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a partner without transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "partner", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeletePartner(ctx, args[0])
		})
	},
}

var partnerTxCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record a partner injection or withdrawal",
	Example: `  tracker partner tx --partner 0190c6a2-... --type injection --amount 10000
  tracker partner tx --partner 0190c6a2-... --type withdrawal --amount 2500 --date 2024-06-30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := partnerTxInput(cmd)
		if err != nil {
			return err
		}
		return runOperation(cmd, "partner", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreatePartnerTransaction(ctx, in)
		})
	},
}

var partnerUpdateTxCmd = &cobra.Command{
	Use:   "update-tx <id>",
	Short: "Edit a partner transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := partnerTxInput(cmd)
		if err != nil {
			return err
		}
		return runOperation(cmd, "partner", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.UpdatePartnerTransaction(ctx, args[0], in)
		})
	},
}

var partnerRemoveTxCmd = &cobra.Command{
	Use:   "rm-tx <id>",
	Short: "Delete a partner transaction and its cash movement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "partner", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeletePartnerTransaction(ctx, args[0])
		})
	},
}

func partnerTxInput(cmd *cobra.Command) (operations.PartnerTransactionInput, error) {
	var in operations.PartnerTransactionInput
	if ok, err := readInput(cmd, &in); ok || err != nil {
		return in, err
	}
	f := cmd.Flags()
	in.PartnerID, _ = f.GetString("partner")
	kind, _ := f.GetString("type")
	in.Type = models.PartnerTransactionType(kind)
	in.AmountUSD, _ = f.GetFloat64("amount")
	in.Date, _ = f.GetString("date")
	in.Description, _ = f.GetString("description")
	return in, nil
}

func init() {
	rootCmd.AddCommand(partnerCmd)
	partnerCmd.AddCommand(partnerAddCmd, partnerRemoveCmd, partnerTxCmd, partnerUpdateTxCmd, partnerRemoveTxCmd)

	for _, c := range []*cobra.Command{partnerTxCmd, partnerUpdateTxCmd} {
		addInputFlags(c)
		c.Flags().String("partner", "", "Partner ID")
		c.Flags().String("type", string(models.PartnerInjection), "injection or withdrawal")
		c.Flags().Float64("amount", 0, "Amount in USD")
		c.Flags().String("date", today(), "Transaction date (YYYY-MM-DD)")
		c.Flags().String("description", "", "Free text description")
	}
}
