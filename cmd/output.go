package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// shouldAutoJSON reports whether output should switch to JSON because
// stdout is not a terminal. Help, completion scripts and the server keep
// their normal output.
func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 {
		return false
	}
	scan := scanArgs(args)
	if scan.hasFlag("json") || scan.hasFlag("help") {
		return false
	}
	switch scan.command {
	case "completion", "help", "serve":
		return false
	default:
		return true
	}
}

// jsonRequested reports whether --json is set before any "--".
func jsonRequested(args []string) bool {
	return scanArgs(args).hasFlag("json")
}

// firstCommand returns the subcommand args select, or "" for the root.
func firstCommand(args []string) string {
	return scanArgs(args).command
}

// withFlag adds flag ahead of a "--" terminator so it is still parsed as a
// flag.
func withFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args)+1)
	for i, arg := range args {
		if arg == "--" {
			out = append(out, flag)
			return append(out, args[i:]...)
		}
		out = append(out, arg)
	}
	return append(out, flag)
}

type quickStartCommand struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type quickStart struct {
	Name     string              `json:"name"`
	Usage    string              `json:"usage"`
	Commands []quickStartCommand `json:"commands"`
	Examples []string            `json:"examples"`
}

func newQuickStart() quickStart {
	qs := quickStart{
		Name:  rootCmd.Name(),
		Usage: "ordercat [command] --source FILE|URL [flags]",
		Examples: []string{
			"ordercat --source orders.json --limit 10",
			"ordercat categories --source orders.json",
			`ordercat parse "WHEY PROTEIN 1Kg - Chocolate"`,
		},
	}
	for _, c := range rootCmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "completion" {
			continue
		}
		qs.Commands = append(qs.Commands, quickStartCommand{Name: c.Name(), Summary: c.Short})
	}
	return qs
}

func printQuickStart(w io.Writer, asJSON bool) error {
	qs := newQuickStart()
	if asJSON {
		return json.NewEncoder(w).Encode(qs)
	}

	if _, err := fmt.Fprintf(w, "%s: %s\nusage: %s\n\ncommands:\n", qs.Name, rootCmd.Short, qs.Usage); err != nil {
		return err
	}
	for _, c := range qs.Commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.Name, c.Summary)
	}
	fmt.Fprintln(w, "\nexamples:")
	for _, ex := range qs.Examples {
		fmt.Fprintf(w, "  %s\n", ex)
	}
	_, err := fmt.Fprintln(w, "\nSet ORDERCAT_SOURCE to skip --source.")
	return err
}
