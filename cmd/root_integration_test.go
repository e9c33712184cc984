package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersJSON = `[
  {"order_id": "1", "order_date": "2023-01-01", "product_name": "CREATINA 300g", "product_quantity": 1, "product_price": 20},
  {"order_id": "2", "order_date": "2023-06-01", "product_name": "CREATINA 300g", "product_quantity": 2, "product_price": 44},
  {"order_id": "3", "order_date": "2023-02-10", "product_name": "WHEY PROTEIN 1Kg - Chocolate", "product_quantity": 1, "product_price": 30},
  {"order_id": "4", "order_date": "2023-03-15", "product_name": "CAMISETA (L) - Negra", "product_quantity": 1, "product_price": 15},
  {"order_id": "5", "order_date": "someday", "product_name": "LLAVERO", "product_quantity": 1, "product_price": 2}
]`

func writeOrders(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("ORDERCAT_SOURCE", "")
	t.Setenv("ORDERCAT_RULES_FILE", "")
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runCLI(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCLI_CompletionZsh(t *testing.T) {
	code, stdout, stderr := run("completion", "zsh")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "#compdef ordercat")
	assert.Empty(t, stderr)
}

func TestRunCLI_HelpDetails(t *testing.T) {
	code, stdout, stderr := run("help", "details")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "ordercat details KEY [flags]")
	assert.Empty(t, stderr)
}

func TestRunCLI_TolerantRewriteWithoutLoading(t *testing.T) {
	code, stdout, stderr := run("categories", "-source", "orders.json", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "ordercat categories [flags]")
	assert.Contains(t, stderr, "interpreted `-source` as `--source`")
}

func TestRunCLI_DoubleDashBoundary(t *testing.T) {
	code, _, stderr := run("categories", "--", "json", "--help")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, `unknown command "json"`)
	assert.False(t, strings.Contains(stderr, "interpreted `json` as `--json`"))
}

func TestRunCLI_GroupsJSON(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, stdout, stderr := run("--source", path, "--sort", "price", "--desc")
	require.Equal(t, 0, code, stderr)

	var groups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, "WHEY PROTEIN (1Kg)", groups[0]["group_key"])
	assert.Equal(t, "CREATINA (300g)", groups[1]["group_key"])
	assert.Equal(t, 22.0, groups[1]["last_unit_price"])
	assert.Equal(t, "CAMISETA Negra (L)", groups[2]["group_key"])
}

func TestRunCLI_GroupsCategoryAndLimit(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, stdout, stderr := run("--source", path, "--category", "ropa")
	require.Equal(t, 0, code, stderr)
	var groups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "CAMISETA Negra (L)", groups[0]["group_key"])

	code, stdout, _ = run("--source", path, "-n", "2")
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(stdout), &groups))
	assert.Len(t, groups, 2)
}

func TestRunCLI_TUIJSONMatchesGroupsListing(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, want, stderr := run("--source", path, "--sort", "price", "--desc", "--limit", "2")
	require.Equal(t, 0, code, stderr)
	code, got, stderr := run("tui", "--source", path, "--sort", "price", "--desc", "--limit", "2", "--json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, want, got)

	code, _, stderr = run("tui", "--source", path, "--query", "zzz", "--json")
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, "no products match your filters")
}

func TestRunCLI_NoResultsIsNotFound(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, _, stderr := run("--source", path, "--query", "nothing-like-this")
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, `"NOT_FOUND"`)
	assert.Contains(t, stderr, "no products match")
}

func TestRunCLI_NoDataIsNotFound(t *testing.T) {
	path := writeOrders(t, `[{"order_date": "bad", "product_name": "X"}]`)

	code, _, stderr := run("--source", path)
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, "no data")
}

func TestRunCLI_UnknownCategoryIsInvalid(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, _, stderr := run("--source", path, "--category", "furniture")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "unknown category")
}

func TestRunCLI_BadSortIsInvalidBeforeLoading(t *testing.T) {
	code, _, stderr := run("--source", "missing.json", "--sort", "colour")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--sort")
}

func TestRunCLI_MissingSourceIsUpstream(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")
	path := filepath.Join(t.TempDir(), "missing.json")

	code, _, stderr := run("--source", path)
	assert.Equal(t, ExitUpstream, code)
	assert.Contains(t, stderr, "UPSTREAM_ERROR")
	assert.Contains(t, stderr, "Check that "+path+" exists.")
	assert.NotContains(t, stderr, "Retry in a moment")
}

func TestRunCLI_UnavailableURLSuggestsRetry(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	code, _, stderr := run("--source", srv.URL+"/orders.json")
	assert.Equal(t, ExitUpstream, code)
	assert.Contains(t, stderr, "503")
	assert.Contains(t, stderr, "Retry in a moment.")
}

func TestRunCLI_BadLimitValue(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")

	code, _, stderr := run("--source", "orders.json", "--limit", "abc")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "invalid argument")
}

func TestRunCLI_NoSourceConfigured(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")

	code, _, stderr := run("categories")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--source")
}

func TestRunCLI_Categories(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, stdout, stderr := run("categories", "--source", path)
	require.Equal(t, 0, code, stderr)

	var cats []struct {
		Name   string `json:"name"`
		Groups int    `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &cats))
	require.Len(t, cats, 4)
	assert.Equal(t, "all", cats[0].Name)
	assert.Equal(t, 3, cats[0].Groups)
}

func TestRunCLI_DetailsAndChart(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, stdout, stderr := run("details", "CREATINA (300g)", "--source", path)
	require.Equal(t, 0, code, stderr)
	var details struct {
		Purchases []map[string]any `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &details))
	require.Len(t, details.Purchases, 2)
	assert.Equal(t, "2", details.Purchases[0]["order_id"])

	code, stdout, stderr = run("chart", "CREATINA", "(300g)", "--source", path)
	require.Equal(t, 0, code, stderr)
	var chart map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &chart))
	assert.Equal(t, "CREATINA (300g)", chart["group_key"])
	assert.NotNil(t, chart["trend"])
	assert.Len(t, chart["trend_endpoints"], 2)
}

func TestRunCLI_DetailsAcceptsRawProductName(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, stdout, stderr := run("details", "WHEY", "PROTEIN", "1Kg", "-Chocolate", "--source", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "treated `-Chocolate` as part of the group key")

	var details struct {
		Group struct {
			GroupKey string `json:"group_key"`
		} `json:"group"`
		Purchases []map[string]any `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &details))
	assert.Equal(t, "WHEY PROTEIN (1Kg)", details.Group.GroupKey)
	assert.Len(t, details.Purchases, 1)
}

func TestRunCLI_DetailsUnknownKeySuggests(t *testing.T) {
	path := writeOrders(t, ordersJSON)

	code, _, stderr := run("details", "CREATINA", "--source", path)
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, `CREATINA (300g)`)
}

func TestRunCLI_ParseNeedsNoSource(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")

	code, stdout, stderr := run("parse", "WHEY PROTEIN 1Kg - Chocolate", "json")
	require.Equal(t, 0, code, stderr)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "WHEY PROTEIN (1Kg)", parsed[0]["group_key"])
	assert.Equal(t, "Chocolate", parsed[0]["flavor"])
	assert.Equal(t, "json", parsed[1]["input"])
}

func TestRunCLI_RulesFile(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("categories:\n  - category: Llaveros\n    keywords: [llavero]\n"), 0o600))

	code, stdout, stderr := run("parse", "LLAVERO", "--rules", rulesPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"category":"Llaveros"`)
}

func TestRunCLI_InvalidLogLevel(t *testing.T) {
	t.Setenv("ORDERCAT_SOURCE", "")

	code, _, stderr := run("parse", "X", "--log-level", "loud")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--log-level")
}
