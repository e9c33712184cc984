package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldAutoJSON(t *testing.T) {
	assert.True(t, shouldAutoJSON([]string{"categories", "--source", "orders.json"}, false))
	assert.False(t, shouldAutoJSON([]string{"categories", "--source", "orders.json", "--json"}, false))
	assert.False(t, shouldAutoJSON([]string{"completion", "zsh"}, false))
	assert.False(t, shouldAutoJSON([]string{"serve", "--source", "orders.json"}, false))
	assert.False(t, shouldAutoJSON([]string{"--help"}, false))
	assert.False(t, shouldAutoJSON([]string{"details", "-h"}, false))
	assert.False(t, shouldAutoJSON([]string{"categories", "--source", "orders.json"}, true))
	// After "--" the word is a key, not the flag.
	assert.True(t, shouldAutoJSON([]string{"details", "--", "--json"}, false))
}

func TestFirstCommand_SkipsFlagValues(t *testing.T) {
	assert.Equal(t, "details", firstCommand([]string{"--source", "orders.json", "details", "KEY"}))
	assert.Equal(t, "chart", firstCommand([]string{"-c", "ropa", "chart"}))
	assert.Equal(t, "categories", firstCommand([]string{"categoriess"}))
	assert.Equal(t, "", firstCommand([]string{"--desc", "--sort=price"}))
}

func TestWithFlag_StaysAheadOfTerminator(t *testing.T) {
	assert.Equal(t,
		[]string{"details", "--source", "a.json", "--json", "--", "WHEY", "-Lima"},
		withFlag([]string{"details", "--source", "a.json", "--", "WHEY", "-Lima"}, "--json"),
	)
	assert.Equal(t, []string{"categories", "--json"}, withFlag([]string{"categories"}, "--json"))
}

func TestPrintQuickStart_JSONListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQuickStart(&buf, true))

	var payload quickStart
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, "ordercat", payload.Name)
	assert.NotEmpty(t, payload.Usage)
	assert.Len(t, payload.Examples, 3)

	listed := make(map[string]string, len(payload.Commands))
	for _, c := range payload.Commands {
		listed[c.Name] = c.Summary
	}
	for _, name := range []string{"categories", "details", "chart", "parse", "tui", "serve"} {
		assert.NotEmpty(t, listed[name], name)
	}
	assert.NotContains(t, listed, "completion")
	assert.NotContains(t, listed, "help")
}

func TestPrintQuickStart_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQuickStart(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "usage: ordercat [command]")
	assert.Contains(t, out, "commands:")
	assert.Contains(t, out, "  details")
	assert.Contains(t, out, "ORDERCAT_SOURCE")
}
