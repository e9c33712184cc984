package cmd

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tayloree/order-catalog/internal/display"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the catalog interactively in the terminal",
	Example: `  ordercat tui --source orders.json
  ordercat tui --source orders.json --category proteinas --sort price --desc`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerViewFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	opts, err := viewOptions()
	if err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`ordercat tui` requires an interactive terminal",
			"Use `ordercat --source orders.json --json` in pipelines.",
		)
	}

	sess, err := newSession(cmd)
	if err != nil {
		return err
	}

	if flagJSON {
		_, groups, err := sess.view(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return display.PrintGroupsJSON(cmd.OutOrStdout(), groups)
	}

	if err := sess.requireSources(); err != nil {
		return err
	}

	model := newLoadingCatalogTUIModel(tuiLoadConfig{
		ctx:         cmd.Context(),
		load:        sess.snapshot,
		initialOpts: opts,
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(catalogTUIModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
