package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/category"
)

// categorySynonyms maps taxonomy labels to extra words users type for them.
var categorySynonyms = []struct {
	label    string
	synonyms []string
}{
	{category.Proteins, []string{"protein", "proteina", "whey"}},
	{category.Creatine, []string{"creatine"}},
	{category.AminoAcids, []string{"amino", "amino acid", "aminoacido", "bcaa", "eaa"}},
	{category.PreWorkout, []string{"pre", "preworkout", "pre workout", "preentreno", "nitric oxide", "oxido nitrico", "pump"}},
	{category.Stimulants, []string{"stimulant", "energy", "energia", "caffeine", "cafeina"}},
	{category.Carbs, []string{"carb", "carbs", "carbohydrate", "carbohidrato", "flour", "harina", "oat", "avena"}},
	{category.Snacks, []string{"snack", "bar", "barrita", "spread", "crema"}},
	{category.Sauces, []string{"sauce", "salsa", "syrup", "sirope", "cocoa", "cacao"}},
	{category.Vitamins, []string{"vitamin", "vitamina", "mineral", "minerales"}},
	{category.OmegaOils, []string{"omega", "omega 3", "oil", "aceite"}},
	{category.Joints, []string{"joint", "articulaciones", "collagen", "colageno"}},
	{category.Herbal, []string{"herbal", "herb", "extract", "extracto", "extractos herbales"}},
	{category.Digestive, []string{"digestive", "digestivo", "probiotic", "probiotico"}},
	{category.Sleep, []string{"sleep", "descanso", "melatonin"}},
	{category.Accessories, []string{"apparel", "clothing", "accessory", "accesorio", "ropa", "merch"}},
	{category.PacksSamples, []string{"pack", "sample", "muestra"}},
	{category.Ingredients, []string{"ingredient", "ingrediente"}},
	{category.Fallback, []string{"other", "otro", "misc"}},
}

var allAliases = []string{"all", "todas", "todo", "any", "*"}

// ResolveCategory maps user input to one of options. Matching ignores
// case, accents, separators and a plural "s"; known synonyms and single
// label segments ("ropa", "omega 3") are accepted when they pick exactly
// one option. Empty input and "all" resolve to catalog.AllCategories.
func ResolveCategory(input string, options []string) (string, bool) {
	raw := strings.TrimSpace(input)
	want := normalizeCategory(raw)
	if want == "" {
		return catalog.AllCategories, true
	}
	for _, alias := range allAliases {
		if want == normalizeCategory(alias) {
			return catalog.AllCategories, true
		}
	}

	for _, opt := range options {
		if strings.EqualFold(opt, raw) {
			return opt, true
		}
	}
	for _, opt := range options {
		if normalizeCategory(opt) == want {
			return opt, true
		}
	}

	for _, entry := range categorySynonyms {
		for _, syn := range entry.synonyms {
			if normalizeCategory(syn) != want {
				continue
			}
			for _, opt := range options {
				if opt == entry.label {
					return opt, true
				}
			}
		}
	}

	match := ""
	for _, opt := range options {
		for _, segment := range strings.Split(opt, "/") {
			if normalizeCategory(segment) == want {
				if match != "" && match != opt {
					return "", false
				}
				match = opt
			}
		}
	}
	return match, match != ""
}

func normalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.NewReplacer("_", " ", "-", " ", "/", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	switch {
	case len(s) > 4 && strings.HasSuffix(s, "ies"):
		s = strings.TrimSuffix(s, "ies") + "y"
	case len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		s = strings.TrimSuffix(s, "s")
	}
	return s
}
