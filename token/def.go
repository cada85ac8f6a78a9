package token

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Def is a compiled matcher for a token kind: either a regular expression or
// an ordered set of literal strings. Both forms expose the same contract so
// the lexer runtime never needs to know which kind of Def it is holding.
type Def struct {
	src     string
	re      *regexp.Regexp
	lits    []string // literal forms only; ordered by descending length
	ci      bool
	maxLen  int  // -1 if unbounded/unknown (regex-backed defs cannot bound in general)
	firstCh map[rune]bool
	anyChar bool // true when StartsWith cannot fast-reject (regex-backed defs)
}

// NewRegexDef compiles pattern into a Def. The pattern is anchored so it
// only ever matches starting at the cursor; it must not itself contain a
// leading "^" (one is added automatically). If caseInsensitive is true, the
// pattern is compiled with the "(?i)" flag.
func NewRegexDef(pattern string, caseInsensitive bool) (*Def, error) {
	anchored := "^(?:" + pattern + ")"
	if caseInsensitive {
		anchored = "(?i)" + anchored
	}

	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("compiling token pattern %q: %w", pattern, err)
	}

	return &Def{
		src:     pattern,
		re:      re,
		ci:      caseInsensitive,
		maxLen:  -1,
		anyChar: true,
	}, nil
}

// NewLiteralDef builds a Def that matches any of lits verbatim, longest
// match wins (§4.2: "must order alternatives by descending length"). If
// caseInsensitive is true, matching folds case on both sides.
func NewLiteralDef(lits []string, caseInsensitive bool) *Def {
	ordered := make([]string, len(lits))
	copy(ordered, lits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len([]rune(ordered[i])) > len([]rune(ordered[j]))
	})

	d := &Def{
		lits:    ordered,
		ci:      caseInsensitive,
		firstCh: map[rune]bool{},
	}

	for _, lit := range ordered {
		runes := []rune(lit)
		if len(lit) > d.maxLen {
			d.maxLen = len(lit)
		}
		if len(runes) == 0 {
			continue
		}
		first := runes[0]
		d.firstCh[first] = true
		if caseInsensitive {
			d.firstCh[unicode.ToLower(first)] = true
			d.firstCh[unicode.ToUpper(first)] = true
		}
	}

	return d
}

// NewSelfNamedDef builds a literal Def matching the given name itself,
// case-insensitively, for the common "keyword is spelled like its own name"
// declaration shortcut mentioned in §6.
func NewSelfNamedDef(name string) *Def {
	return NewLiteralDef([]string{name}, true)
}

// MatchLength returns the length in bytes of the match anchored at start, or
// 0 if there is no match there.
func (d *Def) MatchLength(buffer string, start int) int {
	if start >= len(buffer) {
		// regexes may still match a zero-length pattern; literals cannot.
		if d.re == nil {
			return 0
		}
	}

	if d.re != nil {
		loc := d.re.FindStringIndex(buffer[start:])
		if loc == nil {
			return 0
		}
		return loc[1] - loc[0]
	}

	rest := buffer[start:]
	cmp := rest
	if d.ci {
		cmp = strings.ToLower(rest)
	}
	for _, lit := range d.lits {
		candidate := lit
		if d.ci {
			candidate = strings.ToLower(lit)
		}
		if strings.HasPrefix(cmp, candidate) {
			return len(lit)
		}
	}
	return 0
}

// MaximumLength returns an upper bound on the number of bytes this Def could
// ever match, or -1 if no bound is known (always true for regex-backed
// defs; used by the lexer's sub-token refinement step to skip children that
// could not possibly match the parent's already-consumed text exactly).
func (d *Def) MaximumLength() int {
	return d.maxLen
}

// StartsWith is a fast-reject filter on the first rune of a candidate match.
// Literal-set defs answer precisely; regex-backed defs cannot in general and
// always answer true, deferring the real decision to MatchLength.
func (d *Def) StartsWith(c rune) bool {
	if d.anyChar {
		return true
	}
	return d.firstCh[c]
}

// Source returns the original pattern or, for literal defs, a synthetic
// alternation of the literals — useful for diagnostics only.
func (d *Def) Source() string {
	if d.re != nil {
		return d.src
	}
	return strings.Join(d.lits, "|")
}
