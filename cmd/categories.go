package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tayloree/order-catalog/internal/display"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List category filter options with product counts",
	Example: `  ordercat categories --source orders.json
  ordercat categories --source orders.csv --json`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	snap, err := sess.snapshot(cmd.Context())
	if err != nil {
		return err
	}

	cats := display.CategoryCounts(snap)
	if flagJSON {
		return display.PrintCategoriesJSON(cmd.OutOrStdout(), cats)
	}
	display.PrintCategories(cmd.OutOrStdout(), cats)
	return nil
}
