package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/config"
	"github.com/tayloree/order-catalog/internal/display"
	"github.com/tayloree/order-catalog/internal/filter"
)

var (
	flagSources  []string
	flagRules    string
	flagLogLevel string
	flagJSON     bool

	flagCategory string
	flagQuery    string
	flagSort     string
	flagDesc     bool
	flagLimit    int
)

var rootCmd = &cobra.Command{
	Use:   "ordercat",
	Short: "Build a product catalog from purchase-order history",
	Long: "CLI tool that normalizes purchase-order line items into canonical products,\n" +
		"classifies them and tracks how their unit price moves over time.\n" +
		"Sources are JSON or CSV files or http(s) URLs, given with --source or ORDERCAT_SOURCE.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -source orders.json, sort=price, --categroy ropa).",
	Example: `  ordercat --source orders.json
  ordercat --source orders.json --category proteinas --sort price --desc
  ordercat categories --source orders.csv
  ordercat details "CREATINA (300g)" --source orders.json
  ordercat chart "CREATINA (300g)" --source orders.json --json
  ordercat parse "WHEY PROTEIN 1Kg - Chocolate"
  ordercat serve --source https://example.com/orders.json`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringArrayVar(&flagSources, "source", nil, "Order file or URL (repeatable, comma-separated allowed)")
	pf.StringVar(&flagRules, "rules", "", "YAML rules file overriding parser and classifier rules")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")

	registerViewFlags(rootCmd.Flags())
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 && !sourcesFromEnv() {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			return reportError(stderr, err, false)
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = withFlag(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		return reportError(stderr, err, jsonRequested(normalizedArgs))
	}
	return ExitSuccess
}

func sourcesFromEnv() bool {
	return strings.TrimSpace(os.Getenv(config.EnvPrefix+"_SOURCE")) != ""
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagSources = nil
	flagRules = ""
	flagLogLevel = ""
	flagJSON = false
	flagCategory = ""
	flagQuery = ""
	flagSort = ""
	flagDesc = false
	flagLimit = 0
	flagAddr = ""
}

func registerViewFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagCategory, "category", "c", "", "Filter by category (e.g., proteinas, ropa, all)")
	f.StringVarP(&flagQuery, "query", "q", "", "Search products by words in the group key")
	f.StringVar(&flagSort, "sort", "", "Sort by name, category, count, first, last, or price")
	f.BoolVar(&flagDesc, "desc", false, "Sort descending")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
}

// viewOptions turns the view flags into filter options. The category is
// resolved later against the loaded snapshot.
func viewOptions() (filter.Options, error) {
	col := filter.ColumnGroupKey
	if strings.TrimSpace(flagSort) != "" {
		parsed, err := filter.ParseColumn(flagSort)
		if err != nil {
			return filter.Options{}, invalidArgsError(
				fmt.Sprintf("invalid value for --sort (%v)", err),
				"ordercat --sort price --desc",
				"ordercat --sort last",
			)
		}
		col = parsed
	}
	if flagLimit < 0 {
		return filter.Options{}, invalidArgsError(
			"--limit must be zero or positive",
			"ordercat --limit 10",
		)
	}

	dir := filter.Asc
	if flagDesc {
		dir = filter.Desc
	}
	return filter.Options{
		Category:  flagCategory,
		Query:     flagQuery,
		Sort:      col,
		Direction: dir,
		Limit:     flagLimit,
	}, nil
}

func resolveCategoryFlag(snap *catalog.Snapshot, opts *filter.Options) error {
	if strings.TrimSpace(opts.Category) == "" {
		return nil
	}
	resolved, ok := filter.ResolveCategory(opts.Category, snap.Categories())
	if !ok {
		return invalidArgsError(
			fmt.Sprintf("unknown category %q", opts.Category),
			"ordercat categories",
		)
	}
	opts.Category = resolved
	return nil
}

func runGroups(cmd *cobra.Command, _ []string) error {
	opts, err := viewOptions()
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	snap, groups, err := sess.view(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if flagJSON {
		return display.PrintGroupsJSON(cmd.OutOrStdout(), groups)
	}
	display.PrintGroups(cmd.OutOrStdout(), groups, snap.Len())
	return nil
}
