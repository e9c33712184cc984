package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCLIArgs_RewritesCommonFlagSyntax(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-source", "orders.json", "json"})

	assert.Equal(t, []string{"--source", "orders.json", "--json"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesKeyValueAndAlias(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"sort=price", "--descending", "--src", "a.csv"})

	assert.Equal(t, []string{"--sort=price", "--desc", "--source", "a.csv"}, args)
	assert.Len(t, notes, 3)
}

func TestNormalizeCLIArgs_RewritesTypoFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--categroy", "ropa"})

	assert.Equal(t, []string{"--category", "ropa"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesCommandTypo(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"categoriess", "--source", "orders.json"})

	assert.Equal(t, []string{"categories", "--source", "orders.json"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_KeepsProductNamesAfterParse(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"parse", "json", "sort"})

	assert.Equal(t, []string{"parse", "json", "sort"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteCompletionPositionalArgs(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"completion", "zsh"})

	assert.Equal(t, []string{"completion", "zsh"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteHelpCommandArgAsFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"help", "categories"})

	assert.Equal(t, []string{"help", "categories"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_RespectsDoubleDashBoundary(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"categories", "--", "json", "orders.json"})

	assert.Equal(t, []string{"categories", "--", "json", "orders.json"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_LeavesKnownShorthandUntouched(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-c", "ropa", "-n", "5"})

	assert.Equal(t, []string{"-c", "ropa", "-n", "5"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_KeepsPlainGroupKeyInPlace(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"chart", "CREATINA", "(300g)", "--json"})

	assert.Equal(t, []string{"chart", "CREATINA", "(300g)", "--json"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_MovesDashLedKeyWordsBehindTerminator(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"details", "WHEY", "PROTEIN", "1Kg", "-Chocolate", "--source", "a.json"})

	assert.Equal(t, []string{"details", "--source", "a.json", "--", "WHEY", "PROTEIN", "1Kg", "-Chocolate"}, args)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "`-Chocolate` as part of the group key")
}

func TestNormalizeCLIArgs_KeyWordCloseToAFlagStaysInTheKey(t *testing.T) {
	// "lima" is two edits from "limit" but names a flavor here.
	args, notes := normalizeCLIArgs([]string{"details", "WHEY", "1Kg", "-Lima"})

	assert.Equal(t, []string{"details", "--", "WHEY", "1Kg", "-Lima"}, args)
	assert.Len(t, notes, 1)
}

func TestNormalizeCLIArgs_ExactFlagInsideKeyIsStillAFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"details", "CAMISETA", "-Negra", "-json"})

	assert.Equal(t, []string{"details", "--json", "--", "CAMISETA", "-Negra"}, args)
	assert.Len(t, notes, 2)
}

func TestNormalizeCLIArgs_DoubleDashTypoInsideKeyIsAFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"details", "CREATINA", "--sourse", "a.json"})

	assert.Equal(t, []string{"details", "CREATINA", "--source", "a.json"}, args)
	assert.Len(t, notes, 1)
}

func TestNormalizeCLIArgs_UnknownShorthandBeforeKeyIsLeftToFlagParser(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"details", "-L"})

	assert.Equal(t, []string{"details", "-L"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_KeyValueOnlyForFlagOnlyCommands(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"parse", "sort=price"})
	assert.Equal(t, []string{"parse", "sort=price"}, args)
	assert.Empty(t, notes)

	args, notes = normalizeCLIArgs([]string{"categories", "source=a.json"})
	assert.Equal(t, []string{"categories", "--source=a.json"}, args)
	assert.Len(t, notes, 1)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("chart", "chart"))
	assert.Equal(t, 1, levenshtein("chrt", "chart"))
	assert.Equal(t, 2, levenshtein("detials", "details"))
	assert.Equal(t, 5, levenshtein("", "serve"))
	assert.Equal(t, 5, levenshtein("serve", ""))
	assert.Equal(t, 1, levenshtein("categoría", "categoria"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestClosestMatch(t *testing.T) {
	got, ok := closestMatch("categroy", flagNames, 2)
	assert.True(t, ok)
	assert.Equal(t, "category", got)

	_, ok = closestMatch("chocolate", flagNames, 2)
	assert.False(t, ok)
}
