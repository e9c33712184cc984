package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/trend"
)

// AllCategories is the category option that disables category filtering.
const AllCategories = "all"

// Summary is derived from the first and last item of a group. Display
// dates are the raw order_date strings of those items.
type Summary struct {
	GroupKey         string    `json:"group_key"`
	Category         string    `json:"category"`
	Count            int       `json:"count"`
	FirstDate        time.Time `json:"first_date"`
	FirstDateDisplay string    `json:"first_date_display"`
	LastDate         time.Time `json:"last_date"`
	LastDateDisplay  string    `json:"last_date_display"`
	LastUnitPrice    float64   `json:"last_unit_price"`
}

// Group holds every purchase of one product identity, oldest first.
// Items is shared with the snapshot and must not be modified.
type Group struct {
	Key     string  `json:"group_key"`
	Items   []Item  `json:"-"`
	Summary Summary `json:"summary"`
}

// Snapshot is the immutable result of one aggregation. It is safe for
// any number of concurrent readers.
type Snapshot struct {
	ID        uuid.UUID
	LoadedAt  time.Time
	RecordsIn int
	Dropped   int

	groups     []Group
	index      map[string]int
	categories []string
}

func newSnapshot(sorted []Item) *Snapshot {
	s := &Snapshot{index: make(map[string]int)}
	for _, item := range sorted {
		i, ok := s.index[item.GroupKey]
		if !ok {
			i = len(s.groups)
			s.index[item.GroupKey] = i
			s.groups = append(s.groups, Group{Key: item.GroupKey})
		}
		s.groups[i].Items = append(s.groups[i].Items, item)
	}

	seen := make(map[string]struct{})
	for i := range s.groups {
		g := &s.groups[i]
		g.Summary = summarize(g.Key, g.Items)
		seen[g.Summary.Category] = struct{}{}
	}

	cats := make([]string, 0, len(seen))
	for c := range seen {
		if c != AllCategories {
			cats = append(cats, c)
		}
	}
	collate.New(language.Spanish).SortStrings(cats)
	s.categories = append([]string{AllCategories}, cats...)
	return s
}

func summarize(key string, items []Item) Summary {
	first, last := items[0], items[len(items)-1]
	return Summary{
		GroupKey:         key,
		Category:         first.Category,
		Count:            len(items),
		FirstDate:        first.OrderedAt,
		FirstDateDisplay: strings.TrimSpace(api.Deref(first.OrderDate)),
		LastDate:         last.OrderedAt,
		LastDateDisplay:  strings.TrimSpace(api.Deref(last.OrderDate)),
		LastUnitPrice:    last.UnitPrice,
	}
}

// Empty reports whether the snapshot holds no groups: nothing was loaded
// or every record was dropped.
func (s *Snapshot) Empty() bool { return s == nil || len(s.groups) == 0 }

// Len returns the number of groups.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.groups)
}

// ItemCount returns the number of records that survived aggregation.
func (s *Snapshot) ItemCount() int {
	if s == nil {
		return 0
	}
	return s.RecordsIn - s.Dropped
}

// Groups returns the groups in first-purchase order. The slice is a copy.
func (s *Snapshot) Groups() []Group {
	if s == nil {
		return nil
	}
	return append([]Group(nil), s.groups...)
}

// Group looks up one group by key.
func (s *Snapshot) Group(key string) (Group, bool) {
	if s == nil {
		return Group{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Group{}, false
	}
	return s.groups[i], true
}

// Keys returns every group key in first-purchase order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.groups))
	for i, g := range s.groups {
		keys[i] = g.Key
	}
	return keys
}

// Categories returns the filter options: "all" first, then every category
// present in the snapshot in alphabetical order.
func (s *Snapshot) Categories() []string {
	if s == nil {
		return []string{AllCategories}
	}
	return append([]string(nil), s.categories...)
}

// Details returns a group's purchases, most recent first. Purchases on the
// same instant keep their original order.
func (s *Snapshot) Details(key string) ([]Item, bool) {
	g, ok := s.Group(key)
	if !ok {
		return nil, false
	}
	out := append([]Item(nil), g.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderedAt.After(out[j].OrderedAt)
	})
	return out, true
}

// Chart is the price history of one group: x is the purchase instant in
// Unix milliseconds, y the unit price. Trend is nil when no line can be fit.
type Chart struct {
	GroupKey       string        `json:"group_key"`
	Points         []trend.Point `json:"points"`
	Trend          *trend.Line   `json:"trend,omitempty"`
	TrendEndpoints []trend.Point `json:"trend_endpoints,omitempty"`
}

// Chart builds the price series and optional trend for a group.
func (s *Snapshot) Chart(key string) (Chart, bool) {
	g, ok := s.Group(key)
	if !ok {
		return Chart{}, false
	}
	return ChartOf(g), true
}

// ChartOf builds the price series and optional trend for g.
func ChartOf(g Group) Chart {
	points := make([]trend.Point, len(g.Items))
	for i, item := range g.Items {
		points[i] = trend.Point{X: float64(item.OrderedAt.UnixMilli()), Y: item.UnitPrice}
	}

	c := Chart{GroupKey: g.Key, Points: points}
	if line, ok := trend.Fit(points); ok {
		start, end, _ := line.Endpoints(points)
		c.Trend = &line
		c.TrendEndpoints = []trend.Point{start, end}
	}
	return c
}
