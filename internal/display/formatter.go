package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/names"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

const notAvailable = "N/A"

// Money renders an amount with two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// OptionalMoney renders a nullable amount, or N/A.
func OptionalMoney(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return notAvailable
	}
	return Money(*v)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// GroupJSON is the JSON output shape for a group row.
type GroupJSON struct {
	GroupKey      string    `json:"group_key"`
	Category      string    `json:"category"`
	Count         int       `json:"count"`
	FirstDate     string    `json:"first_date"`
	LastDate      string    `json:"last_date"`
	FirstInstant  time.Time `json:"first_instant"`
	LastInstant   time.Time `json:"last_instant"`
	LastUnitPrice float64   `json:"last_unit_price"`
}

// ItemJSON is the JSON output shape for one purchase.
type ItemJSON struct {
	OrderID     string   `json:"order_id"`
	OrderDate   string   `json:"order_date"`
	ProductName string   `json:"product_name"`
	Quantity    *float64 `json:"product_quantity"`
	Price       *float64 `json:"product_price"`
	UnitPrice   float64  `json:"unit_price"`
	Flavor      string   `json:"flavor,omitempty"`
	OrderedAt   string   `json:"order_instant"`
}

// DetailsJSON is the JSON output shape for one group with its purchases.
type DetailsJSON struct {
	Group     GroupJSON  `json:"group"`
	Purchases []ItemJSON `json:"purchases"`
}

// ParsedJSON is the JSON output shape for a parsed product name.
type ParsedJSON struct {
	Input    string `json:"input"`
	names.Parsed
	Category string `json:"category"`
	Rule     int    `json:"rule"`
	Keyword  string `json:"keyword,omitempty"`
}

// ToGroupJSON converts a summary to its JSON shape.
func ToGroupJSON(s catalog.Summary) GroupJSON {
	return GroupJSON{
		GroupKey:      s.GroupKey,
		Category:      s.Category,
		Count:         s.Count,
		FirstDate:     s.FirstDateDisplay,
		LastDate:      s.LastDateDisplay,
		FirstInstant:  s.FirstDate,
		LastInstant:   s.LastDate,
		LastUnitPrice: round2(s.LastUnitPrice),
	}
}

// ToItemJSON converts a purchase to its JSON shape.
func ToItemJSON(item catalog.Item) ItemJSON {
	return ItemJSON{
		OrderID:     api.Deref(item.OrderID),
		OrderDate:   strings.TrimSpace(api.Deref(item.OrderDate)),
		ProductName: api.Deref(item.ProductName),
		Quantity:    item.ProductQuantity,
		Price:       item.ProductPrice,
		UnitPrice:   round2(item.UnitPrice),
		Flavor:      item.Flavor,
		OrderedAt:   item.OrderedAt.Format(time.RFC3339),
	}
}

// ToParsedJSON runs the classifier explanation for a parsed name.
func ToParsedJSON(input string, p names.Parsed, m category.Match) ParsedJSON {
	return ParsedJSON{Input: input, Parsed: p, Category: m.Category, Rule: m.Rule, Keyword: m.Keyword}
}

// PrintGroups renders the group table. total is the number of groups
// before filtering.
func PrintGroups(w io.Writer, groups []catalog.Group, total int) {
	fmt.Fprintf(w, "\n%s %s\n\n",
		headerStyle.Render("Purchase catalog"),
		cyanStyle.Render(fmt.Sprintf("(%d of %d products)", len(groups), total)),
	)

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		s := g.Summary
		rows = append(rows, []string{
			s.GroupKey,
			s.Category,
			strconv.Itoa(s.Count),
			s.FirstDateDisplay,
			s.LastDateDisplay,
			Money(s.LastUnitPrice),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PRODUCT", "CATEGORY", "COUNT", "FIRST", "LAST", "LAST PRICE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Bold(true)
			case col == 2 || col == 5:
				return style.Align(lipgloss.Right)
			}
			return style
		})
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)
}

// PrintGroupsJSON renders group rows as JSON.
func PrintGroupsJSON(w io.Writer, groups []catalog.Group) error {
	out := make([]GroupJSON, 0, len(groups))
	for _, g := range groups {
		out = append(out, ToGroupJSON(g.Summary))
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintDetails renders one group and its purchases, most recent first.
func PrintDetails(w io.Writer, g catalog.Group, items []catalog.Item) {
	s := g.Summary
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(s.GroupKey))
	fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf("%s | %d purchases | %s - %s", s.Category, s.Count, s.FirstDateDisplay, s.LastDateDisplay)))
	fmt.Fprintf(w, "  Last unit price: %s\n\n", priceStyle.Render(Money(s.LastUnitPrice)))

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		order := api.Deref(item.OrderID)
		if order == "" {
			order = notAvailable
		}
		rows = append(rows, []string{
			order,
			strings.TrimSpace(api.Deref(item.OrderDate)),
			api.Deref(item.ProductName),
			formatQuantity(item.ProductQuantity),
			OptionalMoney(item.ProductPrice),
			Money(item.UnitPrice),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ORDER", "DATE", "NAME", "QTY", "PRICE", "UNIT").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)
}

// PrintDetailsJSON renders one group and its purchases as JSON.
func PrintDetailsJSON(w io.Writer, g catalog.Group, items []catalog.Item) error {
	out := DetailsJSON{Group: ToGroupJSON(g.Summary), Purchases: make([]ItemJSON, 0, len(items))}
	for _, item := range items {
		out.Purchases = append(out.Purchases, ToItemJSON(item))
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintChart renders the price series of a group with a sparkline and the
// trend direction.
func PrintChart(w io.Writer, c catalog.Chart) {
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(c.GroupKey))

	values := make([]float64, len(c.Points))
	for i, p := range c.Points {
		values[i] = p.Y
	}
	fmt.Fprintf(w, "  %s\n\n", cyanStyle.Render(Sparkline(values)))

	for _, p := range c.Points {
		at := time.UnixMilli(int64(p.X)).UTC().Format("2006-01-02")
		fmt.Fprintf(w, "  %s  %s\n", dimStyle.Render(at), priceStyle.Render(Money(p.Y)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", TrendSummary(c))
}

// TrendSummary describes the fitted line in one line of text.
func TrendSummary(c catalog.Chart) string {
	if c.Trend == nil || len(c.TrendEndpoints) != 2 {
		return dimStyle.Render("No trend (needs two purchases on different dates)")
	}
	start, end := c.TrendEndpoints[0], c.TrendEndpoints[1]
	perMonth := c.Trend.Slope * float64(30*24*time.Hour/time.Millisecond)
	text := fmt.Sprintf("Trend %s -> %s (%s per 30 days)", Money(start.Y), Money(end.Y), signedMoney(perMonth))
	switch {
	case perMonth > 0.005:
		return upStyle.Render(text)
	case perMonth < -0.005:
		return downStyle.Render(text)
	default:
		return dimStyle.Render(text)
	}
}

// PrintChartJSON renders the chart payload as JSON.
func PrintChartJSON(w io.Writer, c catalog.Chart) error {
	return json.NewEncoder(w).Encode(c)
}

// CategoryCount pairs a category option with the number of groups in it.
type CategoryCount struct {
	Name   string `json:"name"`
	Groups int    `json:"groups"`
}

// CategoryCounts lists the snapshot's category options, "all" first, with
// the number of groups in each.
func CategoryCounts(snap *catalog.Snapshot) []CategoryCount {
	counts := make(map[string]int)
	for _, g := range snap.Groups() {
		counts[g.Summary.Category]++
	}
	cats := snap.Categories()
	out := make([]CategoryCount, 0, len(cats))
	for _, c := range cats {
		n := counts[c]
		if c == catalog.AllCategories {
			n = snap.Len()
		}
		out = append(out, CategoryCount{Name: c, Groups: n})
	}
	return out
}

// PrintCategories renders the category filter options in order.
func PrintCategories(w io.Writer, cats []CategoryCount) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Categories:"))
	for _, c := range cats {
		fmt.Fprintf(w, "  %s: %d products\n", cyanStyle.Render(c.Name), c.Groups)
	}
	fmt.Fprintln(w)
}

// PrintCategoriesJSON renders categories as JSON.
func PrintCategoriesJSON(w io.Writer, cats []CategoryCount) error {
	return json.NewEncoder(w).Encode(cats)
}

// PrintParsed renders parsed names with their classification.
func PrintParsed(w io.Writer, parsed []ParsedJSON) {
	fmt.Fprintln(w)
	for _, p := range parsed {
		fmt.Fprintf(w, "  %s\n", titleStyle.Render(p.Input))
		fmt.Fprintf(w, "    group key: %s\n", cyanStyle.Render(p.GroupKey))
		fmt.Fprintf(w, "    base: %s | size: %s | flavor: %s\n", p.BaseName, orDash(p.Size), orDash(p.Flavor))
		rule := "fallback"
		if p.Rule >= 0 {
			rule = fmt.Sprintf("rule %d, keyword %q", p.Rule, p.Keyword)
		}
		fmt.Fprintf(w, "    category: %s %s\n", p.Category, dimStyle.Render("("+rule+")"))
		fmt.Fprintln(w)
	}
}

// PrintParsedJSON renders parsed names as JSON.
func PrintParsedJSON(w io.Writer, parsed []ParsedJSON) error {
	return json.NewEncoder(w).Encode(parsed)
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func formatQuantity(q *float64) string {
	if q == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*q, 'f', -1, 64)
}

func signedMoney(v float64) string {
	if v > 0 {
		return "+" + Money(v)
	}
	return Money(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
