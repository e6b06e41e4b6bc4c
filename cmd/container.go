package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/operations"
)

var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Create, update and delete supplier containers",
	Long: `Containers are supplier shipments. A container closes when it is fully
paid and its customs duties are recorded; closing it credits the products
to stock at the container's landed cost.

Container input is a JSON object:

  {
    "supplierId": "...",
    "reference": "MSKU1234567",
    "date": "2024-05-01",
    "productLines": [{"productId": "...", "quantityBags": 500, "priceEUR": 24.5}],
    "freightCostEUR": 1800,
    "customsDutiesUSD": 950,
    "paymentAllocations": [{"paymentId": "...", "amountEUR": 5000}]
  }`,
}

var containerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a container",
	Example: `  tracker container create --file container.json
  cat container.json | tracker container create --file -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in operations.ContainerInput
		if err := requireInput(cmd, &in); err != nil {
			return err
		}
		return runOperation(cmd, "container", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateContainer(ctx, in)
		})
	},
}

var containerUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Replace the editable fields of a container",
	Example: `  tracker container update 0190c6a2-... --file container.json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in operations.ContainerInput
		if err := requireInput(cmd, &in); err != nil {
			return err
		}
		return runOperation(cmd, "container", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.UpdateContainer(ctx, args[0], in)
		})
	},
}

var containerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a container, releasing its payments and reversing its stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "container", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteContainer(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(containerCmd)
	containerCmd.AddCommand(containerCreateCmd, containerUpdateCmd, containerDeleteCmd)

	addInputFlags(containerCreateCmd)
	addInputFlags(containerUpdateCmd)
}
