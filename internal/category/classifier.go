// Package category assigns products to a fixed taxonomy with an ordered
// list of keyword rules. The first rule with a keyword contained in the
// case-folded group key wins; rule order is part of the behavior.
package category

import (
	"strings"

	"golang.org/x/text/cases"
)

// Taxonomy labels.
const (
	Proteins     = "Proteínas"
	Creatine     = "Creatina"
	AminoAcids   = "Aminoácidos"
	PreWorkout   = "Pre-entreno / Óxido Nítrico"
	Stimulants   = "Estimulantes / Energía"
	Carbs        = "Harinas / Carbohidratos"
	Snacks       = "Snacks / Cremas / Barritas"
	Sauces       = "Salsas / Siropes / Cacao"
	Vitamins     = "Vitaminas / Minerales"
	OmegaOils    = "Salud / Omega 3 / Aceites"
	Joints       = "Salud / Articulaciones"
	Herbal       = "Salud / Extractos Herbales"
	Digestive    = "Salud / Digestivos"
	Sleep        = "Salud / Descanso"
	Accessories  = "Ropa / Accesorios"
	PacksSamples = "Packs / Muestras / Otros"
	Ingredients  = "Ingredientes / Otros"

	// Fallback is assigned when no rule matches.
	Fallback = "Other"
)

// Rule maps any of its keywords to Category.
type Rule struct {
	Category string   `yaml:"category" json:"category" validate:"required"`
	Keywords []string `yaml:"keywords" json:"keywords" validate:"required,min=1,dive,required"`
}

// DefaultRules returns the built-in rule list in evaluation order.
// Reordering it changes results: "whey amino" is an amino acid, "citrulina
// cafeína" is a pre-workout, "aceite de magnesio" is an oil.
func DefaultRules() []Rule {
	return []Rule{
		{AminoAcids, []string{"bcaa", "eaa", "amino"}},
		{AminoAcids, []string{"glutamina"}},
		{Proteins, []string{"proteína", "protein", "whey", "casein", "beef", "vegan", "isolate", "concentrate", "soja"}},
		{Creatine, []string{"creatina", "creapure"}},
		{PreWorkout, []string{"citrulina", "arginina"}},
		{PreWorkout, []string{"beta-alanina"}},
		{PreWorkout, []string{"pre-entreno", "pre-workout", "evopump", "evobomb", "evordx"}},
		{Stimulants, []string{"cafeína"}},
		{Carbs, []string{"harina", "avena", "oatmeal", "arroz", "rice", "copos", "evocarbs", "amilopectina", "evodextrin"}},
		{Snacks, []string{"barrita", "bar", "snack", "gominolas", "chuches", "pudding", "crema", "mantequilla", "peanut", "nutry bowl"}},
		{Sauces, []string{"salsa", "sirope", "syrup", "ketchup", "bbq", "sauce", "cacao", "cocoa"}},
		{Vitamins, []string{"vitamina", "vitamin", "multivitamínico"}},
		{OmegaOils, []string{"omega-3", "aceite de", "oil", "krill"}},
		{Vitamins, []string{"magnesio", "calcio", "zinc", "hierro", "potasio", "selenio"}},
		{Joints, []string{"colágeno", "collagen", "evoflex", "articular", "joint"}},
		{Herbal, []string{"extracto", "extract", "curcuma", "ashwagandha", "ginseng", "boswellia", "té verde", "nac"}},
		{Digestive, []string{"digestivo", "digezyme", "probiótico", "inulina"}},
		{Sleep, []string{"melatonina", "5-htp", "gaba", "descanso", "sleep"}},
		{Accessories, []string{"camiseta", "shaker", "mochila", "toalla", "gorra", "correas", "cacito", "pastillero", "mascarilla", "dispensador"}},
		{PacksSamples, []string{"pack", "muestra", "monodosis", "gratis", "regalo"}},
		{Ingredients, []string{"sal", "goma", "sucralosa", "levadura"}},
	}
}

// Match explains a classification.
type Match struct {
	Category string `json:"category"`
	Rule     int    `json:"rule"`
	Keyword  string `json:"keyword,omitempty"`
}

// Matched reports whether a rule (rather than the fallback) decided.
func (m Match) Matched() bool { return m.Rule >= 0 }

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New builds a Classifier. Keywords are case-folded once here. An empty
// fallback means Fallback.
func New(rules []Rule, fallback string) *Classifier {
	if fallback == "" {
		fallback = Fallback
	}
	fold := cases.Fold()
	c := &Classifier{
		rules:    make([]Rule, 0, len(rules)),
		fallback: fallback,
	}
	for _, r := range rules {
		folded := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				folded = append(folded, fold.String(kw))
			}
		}
		c.rules = append(c.rules, Rule{Category: r.Category, Keywords: folded})
	}
	return c
}

var defaultClassifier = New(DefaultRules(), Fallback)

// Default returns the built-in classifier.
func Default() *Classifier { return defaultClassifier }

// Classify returns the category for a group key.
func Classify(groupKey string) string {
	return defaultClassifier.Classify(groupKey)
}

// Classify returns the category for a group key.
func (c *Classifier) Classify(groupKey string) string {
	return c.Explain(groupKey).Category
}

// Explain returns the winning rule and keyword for a group key.
func (c *Classifier) Explain(groupKey string) Match {
	key := cases.Fold().String(groupKey)
	for i, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(key, kw) {
				return Match{Category: rule.Category, Rule: i, Keyword: kw}
			}
		}
	}
	return Match{Category: c.fallback, Rule: -1}
}

// Fallback returns the category used when no rule matches.
func (c *Classifier) Fallback() string { return c.fallback }

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Taxonomy lists every category the classifier can produce, in first-rule
// order, ending with the fallback.
func (c *Classifier) Taxonomy() []string {
	seen := make(map[string]struct{}, len(c.rules)+1)
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	if _, ok := seen[c.fallback]; !ok {
		out = append(out, c.fallback)
	}
	return out
}
