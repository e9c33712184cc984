package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/filter"
)

func ptr(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func rec(date, name string, qty, price float64) api.Record {
	return api.Record{
		OrderDate:       ptr(date),
		ProductName:     ptr(name),
		ProductQuantity: num(qty),
		ProductPrice:    num(price),
	}
}

// sampleGroups returns, in first-purchase order:
// CREATINA (300g), WHEY PROTEIN (1Kg), CAMISETA Negra (L), whey isolate (2Kg), OMEGA-3 (120 softgels)
func sampleGroups() []catalog.Group {
	return catalog.Aggregate([]api.Record{
		rec("2023-01-01", "CREATINA 300g", 1, 20),
		rec("2023-02-01", "WHEY PROTEIN 1Kg - Chocolate", 1, 30),
		rec("2023-03-01", "CAMISETA (L) - Negra", 1, 15),
		rec("2023-04-01", "whey isolate 2Kg - Fresa", 2, 90),
		rec("2023-05-01", "OMEGA-3 120 softgels", 1, 12),
		rec("2023-06-01", "CREATINA 300g", 1, 22),
		rec("2023-07-01", "WHEY PROTEIN 1Kg - Vainilla", 1, 31),
		rec("2023-08-01", "WHEY PROTEIN 1Kg - Fresa", 1, 32),
	}).Groups()
}

func keys(groups []catalog.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestView_NoFiltersIsNoop(t *testing.T) {
	groups := sampleGroups()
	for _, cat := range []string{"", "all"} {
		got := filter.View(groups, filter.Options{Category: cat})
		assert.Equal(t, keys(groups), keys(got))
	}
}

func TestView_Category(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Category: category.Proteins})
	assert.Equal(t, []string{"WHEY PROTEIN (1Kg)", "whey isolate (2Kg)"}, keys(got))

	got = filter.View(sampleGroups(), filter.Options{Category: "proteínas"})
	assert.Empty(t, got, "category filter is exact equality")
}

func TestView_QueryAllTokensCaseFolded(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Query: "  WHEY   1kg "})
	assert.Equal(t, []string{"WHEY PROTEIN (1Kg)"}, keys(got))

	got = filter.View(sampleGroups(), filter.Options{Query: "whey"})
	assert.Equal(t, []string{"WHEY PROTEIN (1Kg)", "whey isolate (2Kg)"}, keys(got))

	got = filter.View(sampleGroups(), filter.Options{Query: "whey creatina"})
	assert.Empty(t, got)
}

func TestView_QuerySubstringWithoutWordBoundary(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Query: "ati"})
	assert.Equal(t, []string{"CREATINA (300g)"}, keys(got))
}

func TestView_CategoryAndQuery(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Category: category.Proteins, Query: "isolate"})
	assert.Equal(t, []string{"whey isolate (2Kg)"}, keys(got))
}

func TestView_SortCountReversesWithoutTies(t *testing.T) {
	groups := catalog.Aggregate([]api.Record{
		rec("2023-01-01", "A", 1, 1),
		rec("2023-01-02", "B", 1, 1),
		rec("2023-01-03", "B", 1, 1),
		rec("2023-01-04", "C", 1, 1),
		rec("2023-01-05", "C", 1, 1),
		rec("2023-01-06", "C", 1, 1),
	}).Groups()

	asc := filter.View(groups, filter.Options{Sort: filter.ColumnCount, Direction: filter.Asc})
	desc := filter.View(groups, filter.Options{Sort: filter.ColumnCount, Direction: filter.Desc})

	assert.Equal(t, []string{"A", "B", "C"}, keys(asc))
	assert.Equal(t, []string{"C", "B", "A"}, keys(desc))
}

func TestView_SortIsStable(t *testing.T) {
	// every group bought once: count ties keep first-purchase order both ways
	groups := catalog.Aggregate([]api.Record{
		rec("2023-01-01", "Z", 1, 1),
		rec("2023-01-02", "Y", 1, 1),
		rec("2023-01-03", "X", 1, 1),
	}).Groups()

	for _, dir := range []filter.Direction{filter.Asc, filter.Desc} {
		got := filter.View(groups, filter.Options{Sort: filter.ColumnCount, Direction: dir})
		assert.Equal(t, []string{"Z", "Y", "X"}, keys(got), "direction %s", dir)
	}
}

func TestView_SortGroupKeyCaseInsensitive(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Sort: filter.ColumnGroupKey})
	assert.Equal(t, []string{
		"CAMISETA Negra (L)",
		"CREATINA (300g)",
		"OMEGA-3 (120 softgels)",
		"whey isolate (2Kg)",
		"WHEY PROTEIN (1Kg)",
	}, keys(got))
}

func TestView_SortNumericAndDates(t *testing.T) {
	groups := sampleGroups()

	got := filter.View(groups, filter.Options{Sort: filter.ColumnLastUnitPrice, Direction: filter.Desc})
	assert.Equal(t, "whey isolate (2Kg)", got[0].Key) // 45
	assert.Equal(t, "OMEGA-3 (120 softgels)", got[len(got)-1].Key)

	got = filter.View(groups, filter.Options{Sort: filter.ColumnLastDate, Direction: filter.Desc})
	assert.Equal(t, []string{
		"WHEY PROTEIN (1Kg)",
		"CREATINA (300g)",
		"OMEGA-3 (120 softgels)",
		"whey isolate (2Kg)",
		"CAMISETA Negra (L)",
	}, keys(got))
}

func TestView_LimitAppliesAfterSort(t *testing.T) {
	got := filter.View(sampleGroups(), filter.Options{Sort: filter.ColumnCount, Direction: filter.Desc, Limit: 2})
	assert.Equal(t, []string{"WHEY PROTEIN (1Kg)", "CREATINA (300g)"}, keys(got))
}

func TestView_DoesNotMutateInput(t *testing.T) {
	groups := sampleGroups()
	before := keys(groups)

	_ = filter.View(groups, filter.Options{Sort: filter.ColumnGroupKey, Direction: filter.Desc})

	assert.Equal(t, before, keys(groups))
}

func TestView_Deterministic(t *testing.T) {
	groups := sampleGroups()
	opts := filter.Options{Query: "e", Sort: filter.ColumnCategory}
	assert.Equal(t, filter.View(groups, opts), filter.View(groups, opts))
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in   string
		want filter.Column
	}{
		{"", filter.ColumnNone},
		{"group_key", filter.ColumnGroupKey},
		{"groupKey", filter.ColumnGroupKey},
		{"name", filter.ColumnGroupKey},
		{"price", filter.ColumnLastUnitPrice},
		{"lastPrice", filter.ColumnLastUnitPrice},
		{"first-date", filter.ColumnFirstDate},
		{"firstDateStr", filter.ColumnFirstDateDisplay},
		{" COUNT ", filter.ColumnCount},
		{"last", filter.ColumnLastDate},
	}
	for _, tt := range tests {
		got, err := filter.ParseColumn(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := filter.ParseColumn("rating")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	d, err := filter.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, filter.Asc, d)

	d, err = filter.ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, filter.Desc, d)
	assert.Equal(t, filter.Asc, d.Toggle())

	_, err = filter.ParseDirection("up")
	assert.Error(t, err)
}

func TestMatchesQuery(t *testing.T) {
	assert.True(t, filter.MatchesQuery("WHEY PROTEIN (1Kg)", ""))
	assert.True(t, filter.MatchesQuery("WHEY PROTEIN (1Kg)", "prot 1KG"))
	assert.False(t, filter.MatchesQuery("WHEY PROTEIN (1Kg)", "prot 2kg"))
}

func TestResolveCategory(t *testing.T) {
	options := []string{
		catalog.AllCategories,
		category.Creatine,
		category.Fallback,
		category.Proteins,
		category.Accessories,
		category.OmegaOils,
		category.Joints,
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", catalog.AllCategories},
		{"ALL", catalog.AllCategories},
		{"todas", catalog.AllCategories},
		{"Proteínas", category.Proteins},
		{"proteinas", category.Proteins},
		{"protein", category.Proteins},
		{"ropa", category.Accessories},
		{"ropa-accesorios", category.Accessories},
		{"omega 3", category.OmegaOils},
		{"aceites", category.OmegaOils},
		{"other", category.Fallback},
		{"creatine", category.Creatine},
	}
	for _, tt := range tests {
		got, ok := filter.ResolveCategory(tt.in, options)
		require.True(t, ok, "ResolveCategory(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ResolveCategory(%q)", tt.in)
	}

	_, ok := filter.ResolveCategory("salud", options)
	assert.False(t, ok, "ambiguous segment")

	_, ok = filter.ResolveCategory("vitaminas", options)
	assert.False(t, ok, "label not among options")

	_, ok = filter.ResolveCategory("garden", options)
	assert.False(t, ok)
}
