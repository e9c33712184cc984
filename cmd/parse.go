package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tayloree/order-catalog/internal/display"
)

var parseCmd = &cobra.Command{
	Use:   "parse NAME...",
	Short: "Show how product names are parsed and classified",
	Long: "Runs the name parser and category classifier on each argument without\n" +
		"loading any source. Useful for checking a --rules file.",
	Example: `  ordercat parse "WHEY PROTEIN 1Kg - Chocolate" "CAMISETA (L) - Negra"
  ordercat parse "EVOBCAA 500g" --rules rules.yaml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}

	out := make([]display.ParsedJSON, 0, len(args))
	for _, name := range args {
		p := sess.parser.Parse(name)
		out = append(out, display.ToParsedJSON(name, p, sess.classifier.Explain(p.GroupKey)))
	}

	if flagJSON {
		return display.PrintParsedJSON(cmd.OutOrStdout(), out)
	}
	display.PrintParsed(cmd.OutOrStdout(), out)
	return nil
}
