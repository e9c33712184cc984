package filter

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tayloree/order-catalog/internal/catalog"
)

// Column names a summary field to sort on.
type Column string

const (
	ColumnNone             Column = ""
	ColumnGroupKey         Column = "group_key"
	ColumnCategory         Column = "category"
	ColumnCount            Column = "count"
	ColumnFirstDate        Column = "first_date"
	ColumnFirstDateDisplay Column = "first_date_display"
	ColumnLastDate         Column = "last_date"
	ColumnLastDateDisplay  Column = "last_date_display"
	ColumnLastUnitPrice    Column = "last_unit_price"
)

// Columns lists the sortable columns in display order.
var Columns = []Column{
	ColumnGroupKey,
	ColumnCategory,
	ColumnCount,
	ColumnFirstDate,
	ColumnFirstDateDisplay,
	ColumnLastDate,
	ColumnLastDateDisplay,
	ColumnLastUnitPrice,
}

var columnAliases = map[string]Column{
	"":                   ColumnNone,
	"none":               ColumnNone,
	"group_key":          ColumnGroupKey,
	"groupkey":           ColumnGroupKey,
	"key":                ColumnGroupKey,
	"name":               ColumnGroupKey,
	"product":            ColumnGroupKey,
	"category":           ColumnCategory,
	"count":              ColumnCount,
	"purchases":          ColumnCount,
	"first_date":         ColumnFirstDate,
	"firstdate":          ColumnFirstDate,
	"first":              ColumnFirstDate,
	"first_date_display": ColumnFirstDateDisplay,
	"firstdatestr":       ColumnFirstDateDisplay,
	"firstdatedisplay":   ColumnFirstDateDisplay,
	"last_date":          ColumnLastDate,
	"lastdate":           ColumnLastDate,
	"last":               ColumnLastDate,
	"last_date_display":  ColumnLastDateDisplay,
	"lastdatestr":        ColumnLastDateDisplay,
	"lastdatedisplay":    ColumnLastDateDisplay,
	"last_unit_price":    ColumnLastUnitPrice,
	"lastunitprice":      ColumnLastUnitPrice,
	"lastprice":          ColumnLastUnitPrice,
	"price":              ColumnLastUnitPrice,
}

// ParseColumn resolves a column name or alias. Matching ignores case,
// hyphens and surrounding space.
func ParseColumn(raw string) (Column, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	if c, ok := columnAliases[key]; ok {
		return c, nil
	}
	if c, ok := columnAliases[strings.ReplaceAll(key, "_", "")]; ok {
		return c, nil
	}
	return ColumnNone, fmt.Errorf("unknown sort column %q", raw)
}

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc and their long forms. Empty means asc.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("unknown sort direction %q (use asc or desc)", raw)
	}
}

// Toggle flips the direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort orders groups in place by column. The sort is stable, so groups
// that compare equal keep their relative order.
func Sort(groups []catalog.Group, column Column, dir Direction) {
	if column == ColumnNone || len(groups) < 2 {
		return
	}
	cmp := comparator(column)
	sign := 1
	if dir == Desc {
		sign = -1
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return sign*cmp(groups[i].Summary, groups[j].Summary) < 0
	})
}

func comparator(column Column) func(a, b catalog.Summary) int {
	switch column {
	case ColumnCount:
		return func(a, b catalog.Summary) int { return a.Count - b.Count }
	case ColumnLastUnitPrice:
		return func(a, b catalog.Summary) int { return compareFloat(a.LastUnitPrice, b.LastUnitPrice) }
	case ColumnFirstDate:
		return func(a, b catalog.Summary) int { return a.FirstDate.Compare(b.FirstDate) }
	case ColumnLastDate:
		return func(a, b catalog.Summary) int { return a.LastDate.Compare(b.LastDate) }
	}

	coll := collate.New(language.Spanish, collate.IgnoreCase)
	field := func(s catalog.Summary) string {
		switch column {
		case ColumnCategory:
			return s.Category
		case ColumnFirstDateDisplay:
			return s.FirstDateDisplay
		case ColumnLastDateDisplay:
			return s.LastDateDisplay
		default:
			return s.GroupKey
		}
	}
	return func(a, b catalog.Summary) int {
		return coll.CompareString(field(a), field(b))
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
