package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/display"
	"github.com/tayloree/order-catalog/internal/filter"
	"github.com/tayloree/order-catalog/internal/names"
)

const maxKeySuggestions = 3

var detailsCmd = &cobra.Command{
	Use:   "details KEY",
	Short: "Show every purchase of one product, most recent first",
	Example: `  ordercat details "CREATINA (300g)" --source orders.json
  ordercat details "WHEY PROTEIN (1Kg)" --source orders.csv --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetails,
}

var chartCmd = &cobra.Command{
	Use:   "chart KEY",
	Short: "Show the unit-price history and trend line of one product",
	Example: `  ordercat chart "CREATINA (300g)" --source orders.json
  ordercat chart "CREATINA (300g)" --source orders.json --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(chartCmd)
}

// groupKeyArg joins the positional arguments so unquoted keys still work.
func groupKeyArg(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// lookupGroup accepts a group key or a product name as it appears on an
// order, such as WHEY PROTEIN 1Kg -Chocolate.
func lookupGroup(snap *catalog.Snapshot, parser *names.Parser, key string) (catalog.Group, error) {
	if g, ok := snap.Group(key); ok {
		return g, nil
	}
	if canonical := parser.Parse(key).GroupKey; canonical != key {
		if g, ok := snap.Group(canonical); ok {
			return g, nil
		}
	}
	return catalog.Group{}, notFoundError(
		fmt.Sprintf("no product with group key %q", key),
		similarKeys(snap, key)...,
	)
}

// similarKeys suggests group keys containing every word of key, or the
// root listing when none do.
func similarKeys(snap *catalog.Snapshot, key string) []string {
	var out []string
	for _, g := range snap.Groups() {
		if filter.MatchesQuery(g.Key, key) {
			out = append(out, fmt.Sprintf("Did you mean %q?", g.Key))
			if len(out) == maxKeySuggestions {
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("ordercat --query %q", key))
	}
	return out
}

func runDetails(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	snap, err := sess.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	g, err := lookupGroup(snap, sess.parser, groupKeyArg(args))
	if err != nil {
		return err
	}
	items, _ := snap.Details(g.Key)

	if flagJSON {
		return display.PrintDetailsJSON(cmd.OutOrStdout(), g, items)
	}
	display.PrintDetails(cmd.OutOrStdout(), g, items)
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	snap, err := sess.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	g, err := lookupGroup(snap, sess.parser, groupKeyArg(args))
	if err != nil {
		return err
	}
	chart := catalog.ChartOf(g)

	if flagJSON {
		return display.PrintChartJSON(cmd.OutOrStdout(), chart)
	}
	display.PrintChart(cmd.OutOrStdout(), chart)
	return nil
}
