package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayloree/order-catalog/internal/api"
)

func TestReportError_JSON(t *testing.T) {
	var buf bytes.Buffer
	code := reportError(&buf, invalidArgsError("bad flag", "ordercat --source orders.json"), true)
	assert.Equal(t, ExitInvalidArgs, code)

	var payload struct {
		Error struct {
			Code        string   `json:"code"`
			Message     string   `json:"message"`
			Suggestions []string `json:"suggestions"`
			ExitCode    int      `json:"exitCode"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "INVALID_ARGS", payload.Error.Code)
	assert.Equal(t, "bad flag", payload.Error.Message)
	assert.Equal(t, []string{"ordercat --source orders.json"}, payload.Error.Suggestions)
	assert.Equal(t, ExitInvalidArgs, payload.Error.ExitCode)
}

func TestReportError_Text(t *testing.T) {
	var buf bytes.Buffer
	code := reportError(&buf, notFoundError("no data: the sources contain no purchases", "Check the order_date column."), false)

	assert.Equal(t, ExitNotFound, code)
	assert.Equal(t, "error[not_found]: no data: the sources contain no purchases\nsuggestions:\n  Check the order_date column.\n", buf.String())
}

func TestClassifyCLIError_UsageErrors(t *testing.T) {
	tests := []struct {
		msg  string
		code errorCode
		hint string
	}{
		{`unknown command "detials" for "ordercat"`, codeInvalidArgs, "Did you mean `details`?"},
		{"unknown flag: --sourse", codeInvalidArgs, "Try `--source`."},
		{"unknown shorthand flag: 'x' in -x", codeInvalidArgs, ""},
		{`invalid argument "abc" for "-n, --limit" flag: strconv.ParseInt: parsing "abc": invalid syntax`, codeInvalidArgs, ""},
		{"requires at least 1 arg(s), only received 0", codeInvalidArgs, ""},
		{"flag needs an argument: --source", codeInvalidArgs, ""},
		{"something odd", codeInternal, ""},
	}
	for _, tt := range tests {
		got := classifyCLIError(errors.New(tt.msg))
		assert.Equal(t, tt.code, got.Code, tt.msg)
		assert.Equal(t, tt.code.exitCode(), got.ExitCode(), tt.msg)
		require.NotEmpty(t, got.Suggestions, tt.msg)
		if tt.hint != "" {
			assert.Equal(t, tt.hint, got.Suggestions[0], tt.msg)
		}
	}
}

func TestClassifyCLIError_UntypedLoadTextIsNotGuessed(t *testing.T) {
	got := classifyCLIError(errors.New("loading records: fetching records: unexpected status 500"))
	assert.Equal(t, codeInternal, got.Code)
}

func TestClassifyCLIError_KeepsTypedErrors(t *testing.T) {
	typed := notFoundError("no products match your filters")
	got := classifyCLIError(fmt.Errorf("running: %w", typed))

	assert.Same(t, typed, got)
	assert.Equal(t, ExitNotFound, got.ExitCode())
}

func TestOffendingToken(t *testing.T) {
	assert.Equal(t, "detials", offendingToken(`unknown command "detials" for "ordercat"`))
	assert.Equal(t, "--sourse", offendingToken("unknown flag: --sourse"))
	assert.Equal(t, "", offendingToken("boom"))
}

func loadFailure(t *testing.T, sources ...string) *cliError {
	t.Helper()
	_, err := api.NewClient(0).LoadAll(context.Background(), sources)
	require.Error(t, err)

	got := classifyCLIError(loadError(sources, err))
	require.Equal(t, codeUpstream, got.Code)
	require.Equal(t, ExitUpstream, got.ExitCode())
	return got
}

func TestLoadError_MissingFileSuggestsPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	got := loadFailure(t, missing)

	assert.Equal(t, "Check that "+missing+" exists.", got.Suggestions[0])
	assert.NotContains(t, got.Suggestions, "Retry in a moment.")
	assert.ErrorIs(t, got, fs.ErrNotExist)
}

func TestLoadError_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	got := loadFailure(t, path)
	assert.Contains(t, got.Suggestions[0], "JSON array")
}

func TestLoadError_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/busy.json" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gone := srv.URL + "/gone.json"
	got := loadFailure(t, gone)
	assert.Equal(t, []string{"Check the URL " + gone + "."}, got.Suggestions)

	got = loadFailure(t, srv.URL+"/busy.json")
	assert.Equal(t, []string{"Retry in a moment."}, got.Suggestions)
}
