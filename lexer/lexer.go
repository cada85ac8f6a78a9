package lexer

import (
	"strings"

	"github.com/dekarrin/gudgeon/token"
)

// Token is one recognized lexeme: its kind, the byte offset it starts at,
// and its length in bytes. Role kinds with no text form (EndOfLine, Indent,
// Dedent, and the final EndOfStream) always have Length 0.
type Token struct {
	Kind   token.Kind
	Start  int
	Length int
}

// Options configures lexer-wide behavior that is not specific to any single
// token kind (§6 "Lexer-wide options").
type Options struct {
	// Comments, if non-nil, matches comment text to be discarded wherever it
	// occurs (outside of an already-matched token).
	Comments *token.Def

	// EscapeNewlines, if true, treats a backslash followed by a newline, with
	// only spaces, tabs, carriage returns, or comments between them, as an
	// escape: both characters are consumed without producing a newline
	// boundary.
	EscapeNewlines bool
}

// Result is the output of a complete lex pass: the (possibly
// trailing-whitespace-trimmed) buffer the token offsets index into, the
// token stream itself, the ascending list of every newline's byte offset,
// and whether any Error tokens were produced (§3 "Token stream").
type Result struct {
	Buffer         string
	Tokens         []Token
	NewlineOffsets []int
	HasErrors      bool
}

// Lexer consumes source text against a rule Forest and produces a Result.
// A Lexer is stateless between calls to Lex; nothing about a call's input
// is retained afterward, so one Lexer may be reused or shared freely (§5).
type Lexer struct {
	set    *token.Set
	forest *Forest
	opts   Options
}

// New returns a Lexer that recognizes the kinds in set using forest, built
// from the same set via BuildForest.
func New(set *token.Set, forest *Forest, opts Options) *Lexer {
	return &Lexer{set: set, forest: forest, opts: opts}
}

// Lex runs the full lexer loop of §4.3 over input and returns the resulting
// token stream. If truncated is true, input is treated as a partial prefix
// of a larger document: no EndOfStream is appended and the indent stack is
// not drained at the end.
func (lx *Lexer) Lex(input string, truncated bool) *Result {
	buf := trimTrailingSkippable(input)

	eolKind, hasEOL := lx.set.EndOfLine()
	indentKind, hasIndentKind := lx.set.Indent()
	dedentKind, hasDedentKind := lx.set.Dedent()
	trackIndent := hasIndentKind && hasDedentKind

	var tokens []Token
	var indentStack []int
	if trackIndent {
		indentStack = []int{0}
	}

	var (
		start                int
		emittedAny           bool
		lastKind             token.Kind
		hasLastKind          bool
		lastCannotBePostfix  bool
		hasBackslashLatch    bool
		backslashPos         int
	)

	emit := func(k token.Kind, at, length int) {
		tokens = append(tokens, Token{Kind: k, Start: at, Length: length})
		emittedAny = true
		lastKind = k
		hasLastKind = true
	}

	stripTrailingEOLIndent := func() {
		if !hasEOL {
			return
		}
		n := len(tokens)
		if n == 0 {
			return
		}
		if hasIndentKind && n >= 2 && tokens[n-1].Kind == indentKind && tokens[n-2].Kind == eolKind {
			tokens = tokens[:n-2]
			if trackIndent && len(indentStack) > 1 {
				indentStack = indentStack[:len(indentStack)-1]
			}
			return
		}
		if tokens[n-1].Kind == eolKind {
			tokens = tokens[:n-1]
		}
	}

	newlineHandler := func() {
		if hasEOL && emittedAny && (!hasLastKind || (lastKind != indentKind && lastKind != dedentKind)) {
			emit(eolKind, start, 0)
		}

		start++ // consume '\n'

		if !trackIndent {
			return
		}

		width := 0
		for start < len(buf) {
			switch buf[start] {
			case ' ':
				width++
				start++
				continue
			case '\t':
				width += 2
				start++
				continue
			case '\r':
				start++
				continue
			case '\n':
				width = 0
				start++
				continue
			}
			if lx.opts.Comments != nil {
				if cl := lx.opts.Comments.MatchLength(buf, start); cl > 0 {
					start += cl
					continue
				}
			}
			break
		}

		top := indentStack[len(indentStack)-1]
		switch {
		case top > width:
			for len(indentStack) > 0 && indentStack[len(indentStack)-1] > width {
				indentStack = indentStack[:len(indentStack)-1]
				if hasDedentKind {
					emit(dedentKind, start, 0)
				}
			}
		case top < width:
			indentStack = append(indentStack, width)
			if hasIndentKind {
				emit(indentKind, start, 0)
			}
		}
	}

	for start < len(buf) {
		c := buf[start]

		switch c {
		case ' ', '\t', '\r':
			start++
			continue
		case '\n':
			if hasBackslashLatch {
				hasBackslashLatch = false
				start++
				continue
			}
			newlineHandler()
			if lastCannotBePostfix {
				stripTrailingEOLIndent()
			}
			continue
		}

		if lx.opts.Comments != nil {
			if cl := lx.opts.Comments.MatchLength(buf, start); cl > 0 {
				start += cl
				continue
			}
		}

		if hasBackslashLatch {
			// reached a non-whitespace, non-comment, non-newline character
			// before the newline we were waiting for: the backslash is an
			// ordinary character after all. Backtrack and re-lex it.
			start = backslashPos
			hasBackslashLatch = false
			continue
		}
		if c == '\\' && lx.opts.EscapeNewlines {
			hasBackslashLatch = true
			backslashPos = start
			start++
			continue
		}

		winner, length := lx.matchLongest(buf, start)
		if winner == nil {
			emit(lx.set.Error(), start, 1)
			lastCannotBePostfix = false
			start++
			continue
		}

		cls := lx.set.Class(winner.kind)

		if !cls.CanBePrefix() {
			stripTrailingEOLIndent()
		}
		lastCannotBePostfix = !cls.CanBePostfix()

		emit(winner.kind, start, length)
		start += length
	}

	if !truncated {
		if hasEOL && emittedAny {
			dedentNow := hasDedentKind && hasLastKind && lastKind == dedentKind
			eolNow := hasLastKind && lastKind == eolKind
			if !dedentNow && !eolNow {
				emit(eolKind, start, 0)
			}
		}
		if trackIndent {
			for len(indentStack) > 1 {
				indentStack = indentStack[:len(indentStack)-1]
				emit(dedentKind, start, 0)
			}
		}
		emit(lx.set.EndOfStream(), start, 0)
	}

	hasErrors := false
	for _, tok := range tokens {
		if tok.Kind == lx.set.Error() {
			hasErrors = true
			break
		}
	}

	return &Result{
		Buffer:         buf,
		Tokens:         tokens,
		NewlineOffsets: newlineOffsets(buf),
		HasErrors:      hasErrors,
	}
}

// matchLongest scans the root rules of the forest and picks the longest
// match at start, breaking ties by first-declared (§4.3 step 5), then walks
// the winner's from-children to find the most-refined sub-token (§4.3 step
// 6).
func (lx *Lexer) matchLongest(buf string, start int) (*node, int) {
	var winner *node
	var winnerLen int

	c := rune(buf[start])
	for _, root := range lx.forest.roots {
		if !root.def.StartsWith(c) {
			continue
		}
		l := root.def.MatchLength(buf, start)
		if l > winnerLen {
			winnerLen = l
			winner = root
		}
	}

	if winner == nil {
		return nil, 0
	}

	cur := winner
	for {
		var next *node
		for _, child := range cur.children {
			if max := child.def.MaximumLength(); max >= 0 && max < winnerLen {
				continue
			}
			if child.def.MatchLength(buf, start) == winnerLen {
				next = child
				break
			}
		}
		if next == nil {
			break
		}
		winner = next
		cur = next
	}

	return winner, winnerLen
}

// trimTrailingSkippable removes trailing ' ', '\t', and '\r' bytes, per the
// setup step at the top of §4.3.
func trimTrailingSkippable(s string) string {
	end := len(s)
	for end > 0 {
		switch s[end-1] {
		case ' ', '\t', '\r':
			end--
			continue
		}
		break
	}
	return s[:end]
}

// newlineOffsets computes the ascending list of every '\n' byte offset in
// buf, independent of the tokens recognized (tokens may legally contain
// embedded newlines, e.g. inside a triple-quoted string).
func newlineOffsets(buf string) []int {
	var offsets []int
	idx := 0
	for {
		i := strings.IndexByte(buf[idx:], '\n')
		if i < 0 {
			break
		}
		offsets = append(offsets, idx+i)
		idx += i + 1
	}
	return offsets
}
