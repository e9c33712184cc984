package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type flagSpec struct {
	takesValue bool
	short      byte
}

var knownFlags = map[string]flagSpec{
	"source":    {takesValue: true},
	"rules":     {takesValue: true},
	"log-level": {takesValue: true},
	"json":      {},
	"category":  {takesValue: true, short: 'c'},
	"query":     {takesValue: true, short: 'q'},
	"sort":      {takesValue: true},
	"desc":      {},
	"limit":     {takesValue: true, short: 'n'},
	"addr":      {takesValue: true},
	"help":      {short: 'h'},
}

// flagNames is sorted so typo resolution is deterministic.
var flagNames = slices.Sorted(maps.Keys(knownFlags))

var flagAliases = map[string]string{
	"src":        "source",
	"file":       "source",
	"url":        "source",
	"rules-file": "rules",
	"loglevel":   "log-level",
	"cat":        "category",
	"search":     "query",
	"order-by":   "sort",
	"descending": "desc",
	"reverse":    "desc",
	"max":        "limit",
	"listen":     "addr",
}

var knownCommands = []string{
	"categories",
	"details",
	"chart",
	"parse",
	"tui",
	"serve",
	"completion",
	"help",
}

// commandProfile says how the words after a command are read.
type commandProfile struct {
	bareFlags bool // a word may be a flag name missing its dashes
	nested    bool // the first word may name another command
	groupKey  bool // words form one group key, dash-led words included
}

// Commands missing here (parse) take free text: words stay as typed.
var commandProfiles = map[string]commandProfile{
	"":           {bareFlags: true},
	"categories": {bareFlags: true},
	"serve":      {bareFlags: true},
	"tui":        {bareFlags: true},
	"details":    {groupKey: true},
	"chart":      {groupKey: true},
	"help":       {nested: true},
	"completion": {nested: true},
}

type argKind int

const (
	argWord argKind = iota
	argCommand
	argFlag
	argValue
	argKeyPart // dash-led word that belongs to a group key
	argTerminator
)

type scannedArg struct {
	text string
	kind argKind
	flag string // canonical name, set for recognized flags
}

type scanResult struct {
	args    []scannedArg
	command string
	notes   []string
}

func (r scanResult) hasFlag(name string) bool {
	for _, a := range r.args {
		if a.kind == argFlag && a.flag == name {
			return true
		}
	}
	return false
}

func (r scanResult) hasKind(kind argKind) bool {
	for _, a := range r.args {
		if a.kind == kind {
			return true
		}
	}
	return false
}

type argScanner struct {
	scanResult
	profile      commandProfile
	chosen       bool
	nestedDone   bool
	keyStarted   bool
	pendingValue bool
	terminated   bool
}

// scanArgs classifies every token and repairs the ones whose intent is
// clear: single-dash long flags, aliases, typos, key=value and bare flag
// names.
func scanArgs(args []string) scanResult {
	s := &argScanner{profile: commandProfiles[""]}
	for _, tok := range args {
		s.push(tok)
	}
	return s.scanResult
}

func (s *argScanner) push(tok string) {
	switch {
	case s.terminated:
		s.emit(tok, argWord, "")
	case s.pendingValue:
		s.pendingValue = false
		s.emit(tok, argValue, "")
	case tok == "--":
		s.terminated = true
		s.emit(tok, argTerminator, "")
	case len(tok) > 1 && tok[0] == '-':
		s.pushDashed(tok)
	default:
		s.pushWord(tok)
	}
}

func (s *argScanner) pushDashed(tok string) {
	double := strings.HasPrefix(tok, "--")
	name, value := splitFlag(strings.TrimLeft(tok, "-"))

	if !double && len(name) == 1 && value == "" {
		switch long, ok := shorthandFor(name[0]); {
		case ok:
			s.setFlag(tok, long, false)
		case s.keyStarted:
			s.keyPart(tok)
		default:
			s.emit(tok, argFlag, "")
		}
		return
	}

	canonical, exact, ok := lookupFlag(name)
	switch {
	// Inside a group key only exact names count as flags; "-Negra" is a
	// variant, not a typo of a flag.
	case ok && (double || exact || !s.keyStarted):
		rewritten := "--" + canonical + value
		if rewritten != tok {
			s.rewrote(tok, rewritten)
		}
		s.setFlag(rewritten, canonical, value != "")
	case s.keyStarted && !double:
		s.keyPart(tok)
	default:
		s.emit(tok, argFlag, "")
	}
}

func (s *argScanner) pushWord(tok string) {
	if !s.chosen || (s.profile.nested && !s.nestedDone) {
		if cmd, ok := resolveCommand(tok); ok {
			if cmd != tok {
				s.notes = append(s.notes, fmt.Sprintf("interpreted command `%s` as `%s`; use `%s` next time.", tok, cmd, cmd))
			}
			s.choose(cmd)
			s.emit(cmd, argCommand, "")
			return
		}
	}

	if s.profile.bareFlags {
		name, value := splitFlag(tok)
		if canonical, _, ok := lookupFlag(name); ok {
			rewritten := "--" + canonical + value
			s.rewrote(tok, rewritten)
			s.setFlag(rewritten, canonical, value != "")
			return
		}
	}

	if s.profile.groupKey {
		s.keyStarted = true
	}
	s.emit(tok, argWord, "")
}

func (s *argScanner) choose(cmd string) {
	if s.chosen {
		s.nestedDone = true
		return
	}
	s.chosen = true
	s.command = cmd
	s.profile = commandProfiles[cmd]
}

func (s *argScanner) emit(text string, kind argKind, flag string) {
	s.args = append(s.args, scannedArg{text: text, kind: kind, flag: flag})
}

func (s *argScanner) setFlag(text, canonical string, inlineValue bool) {
	s.emit(text, argFlag, canonical)
	s.pendingValue = knownFlags[canonical].takesValue && !inlineValue
}

func (s *argScanner) keyPart(tok string) {
	s.emit(tok, argKeyPart, "")
	s.notes = append(s.notes, fmt.Sprintf("treated `%s` as part of the group key; quote the key to avoid this.", tok))
}

func (s *argScanner) rewrote(from, to string) {
	s.notes = append(s.notes, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", from, to, to))
}

// normalizeCLIArgs returns the repaired arguments and one note per repair.
// When a group key holds dash-led words, every key word moves behind "--"
// so the flag parser leaves them alone.
func normalizeCLIArgs(args []string) ([]string, []string) {
	scan := scanArgs(args)
	out := make([]string, 0, len(scan.args)+1)

	if !scan.hasKind(argKeyPart) {
		for _, a := range scan.args {
			out = append(out, a.text)
		}
		return out, scan.notes
	}

	var key []string
	for _, a := range scan.args {
		switch a.kind {
		case argWord, argKeyPart:
			key = append(key, a.text)
		case argTerminator:
		default:
			out = append(out, a.text)
		}
	}
	out = append(out, "--")
	return append(out, key...), scan.notes
}

// lookupFlag resolves a flag name in any case, with underscores, through an
// alias or with a small typo. exact is false only for typo matches.
func lookupFlag(raw string) (canonical string, exact, ok bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if alias, found := flagAliases[name]; found {
		return alias, true, true
	}
	if _, found := knownFlags[name]; found {
		return name, true, true
	}
	if guess, found := closestMatch(name, flagNames, 2); found {
		return guess, false, true
	}
	return "", false, false
}

func resolveFlagName(raw string) (string, bool) {
	canonical, _, ok := lookupFlag(raw)
	return canonical, ok
}

func shorthandFor(c byte) (string, bool) {
	for _, name := range flagNames {
		if knownFlags[name].short == c {
			return name, true
		}
	}
	return "", false
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if slices.Contains(knownCommands, name) {
		return name, true
	}
	return closestMatch(name, knownCommands, 2)
}

func splitFlag(s string) (name, value string) {
	if n, v, ok := strings.Cut(s, "="); ok {
		return n, "=" + v
	}
	return s, ""
}

// closestMatch returns the candidate with the smallest edit distance to
// target, if it is within maxDistance. Ties go to the earlier candidate.
func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, c := range candidates {
		if d := levenshtein(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxDistance
}

// levenshtein is the edit distance between a and b counted in runes, so
// accented names cost one edit per letter.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			above := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(rb)]
}
