package names

import (
	"regexp"
	"unicode/utf8"
)

// SizeKind tags what a size rule measures.
type SizeKind string

// Size kinds, most specific first.
const (
	KindCompound  SizeKind = "compound"
	KindCount     SizeKind = "count"
	KindWeight    SizeKind = "weight"
	KindVolume    SizeKind = "volume"
	KindApparel   SizeKind = "apparel"
	KindDimension SizeKind = "dimension"
	KindNamed     SizeKind = "named"
)

// SizeRule is one entry of the size-detection table.
type SizeRule struct {
	Name    string
	Kind    SizeKind
	Pattern *regexp.Regexp
}

// Find returns the byte offsets of the leftmost match of the rule in name.
func (r SizeRule) Find(name string) (start, end int, ok bool) {
	if r.Pattern == nil {
		return 0, 0, false
	}
	loc := r.Pattern.FindStringIndex(name)
	if loc == nil || loc[0] == loc[1] {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// DefaultSizeRules returns the built-in size table. Order only breaks ties
// between equally long matches; length decides everything else.
func DefaultSizeRules() []SizeRule {
	return []SizeRule{
		{Name: "count-by-weight", Kind: KindCompound, Pattern: regexp.MustCompile(`(?i)\d+\s*x\s*\d+g`)},
		{Name: "capsules", Kind: KindCount, Pattern: regexp.MustCompile(`(?i)(\d+)\s*(x\d+)?\s*(veg caps?|softgels?|tabs?|cápsulas|caps|comprimidos|comp|perlas|gominolas|chuches|pastillas)`)},
		{Name: "units", Kind: KindCount, Pattern: regexp.MustCompile(`(?i)(\d+)\s*(unidades?|uds?)`)},
		{Name: "servings", Kind: KindCount, Pattern: regexp.MustCompile(`(?i)(\d+)\s*(servicios?|serv|dosis)`)},
		{Name: "discrete-units", Kind: KindCount, Pattern: regexp.MustCompile(`(?i)(\d+)\s*(viales?|sticks?|barritas?|packs?|ampollas?|sobres?)`)},
		{Name: "kilograms", Kind: KindWeight, Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*kg`)},
		{Name: "grams", Kind: KindWeight, Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g`)},
		{Name: "litres", Kind: KindVolume, Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*l`)},
		{Name: "millilitres", Kind: KindVolume, Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*ml`)},
		{Name: "cubic-centimetres", Kind: KindVolume, Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*cc`)},
		{Name: "apparel-bracketed", Kind: KindApparel, Pattern: regexp.MustCompile(`(?i)\((XS|S|M|L|XL|XXL|XXXL)\)`)},
		{Name: "apparel-bare", Kind: KindApparel, Pattern: regexp.MustCompile(`(?i)\b(XS|S|M|L|XL|XXL|XXXL)\b`)},
		{Name: "dimensions", Kind: KindDimension, Pattern: regexp.MustCompile(`(?i)\d+x\d+cm`)},
		{Name: "tasting-pack", Kind: KindNamed, Pattern: tastingPackPattern},
		{Name: "dispenser", Kind: KindNamed, Pattern: regexp.MustCompile(`(?i)dosificador`)},
	}
}

var (
	tastingPackPattern = regexp.MustCompile(`(?i)pack\s*degustación`)
	apparelCodePattern = regexp.MustCompile(`(?i)\b(XS|S|M|L|XL|XXL|XXXL)\b`)
	parenSuffixPattern = regexp.MustCompile(`\s*\((.+)\)$`)
	trailingHyphen     = regexp.MustCompile(`\s*-\s*$`)
	wordCharPattern    = regexp.MustCompile(`[\p{L}_]`)
	digitPattern       = regexp.MustCompile(`\d`)
)

type sizeMatch struct {
	rule       SizeRule
	start, end int
	runes      int
}

// longestSize picks the longest match across all rules, skipping matches
// glued to a preceding hyphen (those belong to a compound word).
func longestSize(rules []SizeRule, name string) (sizeMatch, bool) {
	var best sizeMatch
	found := false
	for _, rule := range rules {
		start, end, ok := rule.Find(name)
		if !ok {
			continue
		}
		if start > 0 && name[start-1] == '-' {
			continue
		}
		n := utf8.RuneCountInString(name[start:end])
		if !found || n > best.runes {
			best = sizeMatch{rule: rule, start: start, end: end, runes: n}
			found = true
		}
	}
	return best, found
}
