// Package names turns free-text product names into canonical identities:
// a base name, an optional size token, an optional flavor or variant, and
// the group key used to aggregate purchases of the same product.
package names

import (
	"fmt"
	"strings"
)

// Unknown is the identity given to empty or missing product names.
const Unknown = "Unknown"

// VariantPolicy decides what happens to the text after a size token on
// accessory products (shirts, shakers, towels...).
type VariantPolicy string

const (
	// FoldNonFlavor folds the remainder into the base name unless it reads
	// like a flavor-neutral marker. This is the default.
	FoldNonFlavor VariantPolicy = "fold-non-flavor"
	// FoldAlways folds any non-empty remainder into the base name.
	FoldAlways VariantPolicy = "fold-always"
	// NeverFold keeps the remainder as the flavor.
	NeverFold VariantPolicy = "never-fold"
)

// ParsePolicy converts a user-supplied policy name.
func ParsePolicy(raw string) (VariantPolicy, error) {
	switch VariantPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FoldNonFlavor:
		return FoldNonFlavor, nil
	case FoldAlways:
		return FoldAlways, nil
	case NeverFold:
		return NeverFold, nil
	default:
		return "", fmt.Errorf("unknown variant policy %q (use %s, %s or %s)", raw, FoldNonFlavor, FoldAlways, NeverFold)
	}
}

// Parsed is the canonical identity extracted from one product name.
// Empty Size and Flavor mean the name carried none.
type Parsed struct {
	BaseName string `json:"base_name"`
	Size     string `json:"size,omitempty"`
	Flavor   string `json:"flavor,omitempty"`
	GroupKey string `json:"group_key"`
	SizeRule string `json:"size_rule,omitempty"`
}

// Options configures a Parser. Zero-valued fields fall back to defaults.
type Options struct {
	SizeRules         []SizeRule
	AccessoryPrefixes []string
	NeutralMarkers    []string
	Policy            VariantPolicy
}

// DefaultAccessoryPrefixes are the base-name prefixes of non-consumable
// products whose post-size text is a color or model rather than a flavor.
func DefaultAccessoryPrefixes() []string {
	return []string{
		"CAMISETA", "MOCHILA", "SHAKER", "TOALLA", "CORREAS",
		"CACITO", "DISPENSADOR", "MASCARILLA", "PASTILLERO",
	}
}

// DefaultNeutralMarkers mark a remainder as a real flavor attribute.
func DefaultNeutralMarkers() []string {
	return []string{"sabor", "neutro", "natural", "unflavored"}
}

// DefaultOptions returns the built-in parser configuration.
func DefaultOptions() Options {
	return Options{
		SizeRules:         DefaultSizeRules(),
		AccessoryPrefixes: DefaultAccessoryPrefixes(),
		NeutralMarkers:    DefaultNeutralMarkers(),
		Policy:            FoldNonFlavor,
	}
}

// Parser is immutable once built and safe for concurrent use.
type Parser struct {
	sizeRules []SizeRule
	accessory []string
	neutral   []string
	policy    VariantPolicy
}

// New builds a Parser from opts.
func New(opts Options) *Parser {
	def := DefaultOptions()
	if len(opts.SizeRules) == 0 {
		opts.SizeRules = def.SizeRules
	}
	if len(opts.AccessoryPrefixes) == 0 {
		opts.AccessoryPrefixes = def.AccessoryPrefixes
	}
	if len(opts.NeutralMarkers) == 0 {
		opts.NeutralMarkers = def.NeutralMarkers
	}
	if opts.Policy == "" {
		opts.Policy = def.Policy
	}

	p := &Parser{
		sizeRules: append([]SizeRule(nil), opts.SizeRules...),
		policy:    opts.Policy,
	}
	for _, prefix := range opts.AccessoryPrefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			p.accessory = append(p.accessory, strings.ToUpper(prefix))
		}
	}
	for _, marker := range opts.NeutralMarkers {
		if marker = strings.TrimSpace(marker); marker != "" {
			p.neutral = append(p.neutral, strings.ToLower(marker))
		}
	}
	return p
}

var defaultParser = New(DefaultOptions())

// Parse runs the default parser.
func Parse(name string) Parsed {
	return defaultParser.Parse(name)
}

// Policy reports the variant policy in effect.
func (p *Parser) Policy() VariantPolicy { return p.policy }

// Parse extracts the identity of name. It is total: every input, including
// the empty string, yields a usable identity.
func (p *Parser) Parse(name string) Parsed {
	original := strings.TrimSpace(name)
	if original == "" {
		return Parsed{BaseName: Unknown, GroupKey: Unknown}
	}

	base := original
	var size, flavor, rule string

	if m, ok := longestSize(p.sizeRules, base); ok {
		size = strings.TrimSpace(base[m.start:m.end])
		rule = m.rule.Name
		rest := trimVariant(base[m.end:])
		base = strings.TrimSpace(base[:m.start])

		if p.isAccessory(base) {
			base, flavor = p.foldVariant(base, rest)
			if m.rule.Kind == KindApparel {
				if sub := apparelCodePattern.FindStringSubmatch(size); len(sub) == 2 {
					size = strings.ToUpper(sub[1])
				}
			}
		} else {
			flavor = rest
		}
	} else if loc := parenSuffixPattern.FindStringSubmatchIndex(base); loc != nil {
		inner := base[loc[2]:loc[3]]
		if !digitPattern.MatchString(inner) || wordCharPattern.MatchString(digitPattern.ReplaceAllString(inner, "")) {
			flavor = strings.TrimSpace(inner)
			base = strings.TrimSpace(base[:loc[0]])
		}
	}

	base = strings.TrimSpace(trailingHyphen.ReplaceAllString(base, ""))

	if tastingPackPattern.MatchString(original) {
		base = strings.TrimSpace(trailingHyphen.ReplaceAllString(original, ""))
		size, flavor, rule = "", "", ""
	}
	if base == "" {
		base = Unknown
	}

	return Parsed{
		BaseName: base,
		Size:     size,
		Flavor:   flavor,
		GroupKey: GroupKey(base, size),
		SizeRule: rule,
	}
}

// GroupKey joins a base name and an optional size token.
func GroupKey(base, size string) string {
	if size == "" {
		return base
	}
	return base + " (" + size + ")"
}

func (p *Parser) isAccessory(base string) bool {
	upper := strings.ToUpper(base)
	for _, prefix := range p.accessory {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func (p *Parser) looksNeutral(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range p.neutral {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// foldVariant returns the new base name and the flavor for an accessory.
func (p *Parser) foldVariant(base, rest string) (string, string) {
	if rest == "" {
		return base, ""
	}
	switch p.policy {
	case NeverFold:
		return base, rest
	case FoldAlways:
		return joinWords(base, rest), ""
	default:
		if p.looksNeutral(rest) {
			return base, rest
		}
		return joinWords(base, rest), ""
	}
}

func trimVariant(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSpace(s)
}

func joinWords(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
