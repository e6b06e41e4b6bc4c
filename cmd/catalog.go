package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"tracker/internal/operations"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
}

var productAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a product with optional opening stock",
	Example: `  tracker product add "Rice 25kg" --quantity 120 --cost 28.5`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := operations.ProductInput{Name: args[0]}
		in.Quantity, _ = cmd.Flags().GetFloat64("quantity")
		in.CostPerBagUSD, _ = cmd.Flags().GetFloat64("cost")
		return runOperation(cmd, "product", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateProduct(ctx, in)
		})
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Rename a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "product", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.UpdateProduct(ctx, args[0], operations.ProductInput{Name: args[1]})
		})
	},
}

var productRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a product that nothing references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "product", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteProduct(ctx, args[0])
		})
	},
}

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage suppliers",
}

var supplierAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		return runOperation(cmd, "supplier", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.CreateSupplier(ctx, operations.SupplierInput{Name: args[0], Country: country})
		})
	},
}

var supplierUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Edit a supplier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		return runOperation(cmd, "supplier", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.UpdateSupplier(ctx, args[0], operations.SupplierInput{Name: args[1], Country: country})
		})
	},
}

var supplierRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a supplier without containers or payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "supplier", func(ctx context.Context, svc *operations.Service) operations.Result {
			return svc.DeleteSupplier(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(productCmd, supplierCmd)
	productCmd.AddCommand(productAddCmd, productUpdateCmd, productRemoveCmd)
	supplierCmd.AddCommand(supplierAddCmd, supplierUpdateCmd, supplierRemoveCmd)

	productAddCmd.Flags().Float64("quantity", 0, "Opening stock in bags")
	productAddCmd.Flags().Float64("cost", 0, "Opening cost per bag in USD")

	supplierAddCmd.Flags().String("country", "", "Supplier country")
	supplierUpdateCmd.Flags().String("country", "", "Supplier country")
}
