package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/tayloree/order-catalog/internal/api"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitNotFound    = 1 // no data loaded or nothing matched
	ExitInvalidArgs = 2
	ExitUpstream    = 3 // a source could not be loaded
	ExitInternal    = 4
)

type errorCode string

const (
	codeInvalidArgs errorCode = "INVALID_ARGS"
	codeNotFound    errorCode = "NOT_FOUND"
	codeUpstream    errorCode = "UPSTREAM_ERROR"
	codeInternal    errorCode = "INTERNAL_ERROR"
)

func (c errorCode) exitCode() int {
	switch c {
	case codeNotFound:
		return ExitNotFound
	case codeInvalidArgs:
		return ExitInvalidArgs
	case codeUpstream:
		return ExitUpstream
	default:
		return ExitInternal
	}
}

// cliError is what every command returns for an expected failure. It
// carries its own exit code and the hints printed under the message.
type cliError struct {
	Code        errorCode
	Message     string
	Suggestions []string
	cause       error
}

func (e *cliError) Error() string { return e.Message }

func (e *cliError) Unwrap() error { return e.cause }

func (e *cliError) ExitCode() int { return e.Code.exitCode() }

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{Code: codeInvalidArgs, Message: message, Suggestions: suggestions}
}

func notFoundError(message string, suggestions ...string) error {
	return &cliError{Code: codeNotFound, Message: message, Suggestions: suggestions}
}

// loadError reports a source that could not be turned into records.
func loadError(sources []string, err error) error {
	return &cliError{
		Code:        codeUpstream,
		Message:     fmt.Sprintf("loading orders: %v", err),
		Suggestions: loadHints(sources, err),
		cause:       err,
	}
}

// loadHints looks at what actually failed. Only transport problems and
// server-side statuses are worth retrying.
func loadHints(sources []string, err error) []string {
	var (
		pathErr   *fs.PathError
		statusErr *api.StatusError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		csvErr    *csv.ParseError
	)
	switch {
	case errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist):
		return []string{
			fmt.Sprintf("Check that %s exists.", pathErr.Path),
			"ordercat --source PATH",
		}
	case errors.As(err, &pathErr):
		return []string{fmt.Sprintf("Check that %s is a readable file.", pathErr.Path)}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &csvErr):
		return []string{"A source must be a JSON array of order lines or a CSV file with a header row."}
	case errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError:
		return []string{fmt.Sprintf("Check the URL %s.", statusErr.URL)}
	case anyRemote(sources):
		return []string{"Retry in a moment."}
	default:
		return []string{"Check the --source values."}
	}
}

func anyRemote(sources []string) bool {
	for _, src := range sources {
		if api.IsRemote(src) {
			return true
		}
	}
	return false
}

// usageRule recognizes one family of cobra/pflag parse errors. Those come
// back as plain errors, so matching on the message is all there is.
type usageRule struct {
	markers  []string
	examples []string
	hint     func(token string) (string, bool)
}

var usageRules = []usageRule{
	{
		markers:  []string{"unknown command"},
		examples: []string{"ordercat categories --source orders.json", "ordercat details KEY --source orders.json"},
		hint: func(token string) (string, bool) {
			cmd, ok := closestMatch(strings.ToLower(token), knownCommands, 2)
			return fmt.Sprintf("Did you mean `%s`?", cmd), ok
		},
	},
	{
		markers:  []string{"unknown flag", "unknown shorthand flag"},
		examples: []string{"ordercat --source orders.json", "ordercat --source orders.json --sort price --desc"},
		hint: func(token string) (string, bool) {
			flag, ok := resolveFlagName(strings.Trim(token, "-'"))
			return fmt.Sprintf("Try `--%s`.", flag), ok
		},
	},
	{
		markers:  []string{"flag needs an argument", "invalid argument"},
		examples: []string{"ordercat --source orders.json --limit 10", "ordercat parse NAME"},
	},
	{
		markers:  []string{"accepts 0 arg(s)", "requires at least"},
		examples: []string{`ordercat details "CREATINA (300g)"`, `ordercat parse "WHEY PROTEIN 1Kg"`},
	},
}

func (r usageRule) matches(msg string) bool {
	for _, m := range r.markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classifyCLIError maps any error returned by Execute to a cliError.
// Command code returns cliErrors directly; the rest come from flag and
// argument parsing or are bugs.
func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}
	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	for _, rule := range usageRules {
		if !rule.matches(msg) {
			continue
		}
		suggestions := append([]string(nil), rule.examples...)
		if rule.hint != nil {
			if hint, ok := rule.hint(offendingToken(msg)); ok {
				suggestions = append([]string{hint}, suggestions...)
			}
		}
		return &cliError{Code: codeInvalidArgs, Message: msg, Suggestions: suggestions, cause: err}
	}
	return &cliError{
		Code:        codeInternal,
		Message:     msg,
		Suggestions: []string{"Run `ordercat --help` for usage details."},
		cause:       err,
	}
}

// offendingToken pulls the rejected word out of a parse error: the first
// double-quoted string (unknown command "x") or the first word after a
// colon (unknown flag: --x).
func offendingToken(msg string) string {
	if _, rest, ok := strings.Cut(msg, `"`); ok {
		if token, _, ok := strings.Cut(rest, `"`); ok {
			return token
		}
	}
	if _, rest, ok := strings.Cut(msg, ": "); ok {
		if fields := strings.Fields(rest); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

type errorBody struct {
	Code        errorCode `json:"code"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions,omitempty"`
	ExitCode    int       `json:"exitCode"`
}

func (e *cliError) writeJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(struct {
		Error errorBody `json:"error"`
	}{errorBody{Code: e.Code, Message: e.Message, Suggestions: e.Suggestions, ExitCode: e.ExitCode()}})
}

func (e *cliError) writeText(w io.Writer) {
	fmt.Fprintf(w, "error[%s]: %s\n", strings.ToLower(string(e.Code)), e.Message)
	if len(e.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "suggestions:")
	for _, s := range e.Suggestions {
		fmt.Fprintf(w, "  %s\n", s)
	}
}

// reportError prints err the way the caller asked for and returns the
// process exit code.
func reportError(w io.Writer, err error, asJSON bool) int {
	cliErr := classifyCLIError(err)
	if asJSON && cliErr.writeJSON(w) == nil {
		return cliErr.ExitCode()
	}
	cliErr.writeText(w)
	return cliErr.ExitCode()
}
