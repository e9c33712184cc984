// Package filter produces read-only, filtered and sorted views over the
// groups of a catalog snapshot.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/tayloree/order-catalog/internal/catalog"
)

// Options holds the view state: category and text filters, sort and limit.
type Options struct {
	Category  string
	Query     string
	Sort      Column
	Direction Direction
	Limit     int
}

// View returns the groups that pass the filters, sorted and capped. The
// input slice is never modified. An empty category or "all" disables the
// category filter; every query token must appear in the case-folded group
// key.
func View(groups []catalog.Group, opts Options) []catalog.Group {
	category := strings.TrimSpace(opts.Category)
	if category == catalog.AllCategories {
		category = ""
	}
	tokens := QueryTokens(opts.Query)

	var result []catalog.Group
	if category == "" && len(tokens) == 0 {
		result = append(make([]catalog.Group, 0, len(groups)), groups...)
	} else {
		fold := cases.Fold()
		for _, g := range groups {
			if category != "" && g.Summary.Category != category {
				continue
			}
			if len(tokens) > 0 && !containsAll(fold.String(g.Key), tokens) {
				continue
			}
			result = append(result, g)
		}
	}

	if opts.Sort != ColumnNone {
		Sort(result, opts.Sort, opts.Direction)
	}

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result
}

// QueryTokens splits search text on whitespace and case-folds each token.
func QueryTokens(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}
	fold := cases.Fold()
	for i, f := range fields {
		fields[i] = fold.String(f)
	}
	return fields
}

// MatchesQuery reports whether every token of query appears in key.
func MatchesQuery(key, query string) bool {
	tokens := QueryTokens(query)
	return len(tokens) == 0 || containsAll(cases.Fold().String(key), tokens)
}

func containsAll(s string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(s, tok) {
			return false
		}
	}
	return true
}
