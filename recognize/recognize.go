/*
Package recognize implements the scannerless terminal recognizer: given a
position in an input string and the set of terminals a parse state currently
expects, it matches as many of them as possible at that position.

There is no separate tokenizer pass. The parser drives recognition itself,
asking only for the terminals it is prepared to shift or reduce on at the
current state; this is what makes the parser "scannerless".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package recognize

import (
	"sort"
	"strings"

	"github.com/kynrai/glr/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.recognize")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// Match is one terminal recognized at a position: the terminal itself, the
// matched lexeme, and the position immediately behind it.
type Match struct {
	Terminal *grammar.Symbol
	Lexeme   string
	NewPos   int
}

// Layout applies the layout grammar (if any) to skip whitespace/comments
// ahead of the next terminal match attempt, returning the advanced
// position. A nil Layout leaves pos
// unchanged.
func Layout(layout *grammar.Grammar, input string, pos int) int {
	if layout == nil {
		return pos
	}
	// The layout grammar is itself scannerless: greedily recognize its own
	// terminals at increasing positions until none match. Layout terminals
	// are expected to cover exactly the spans to skip (whitespace,
	// comments); there is no nesting beyond what their own patterns allow.
	for {
		expected := layout.Terminals
		matches := At(input, pos, expected, nil)
		if len(matches) == 0 {
			return pos
		}
		best := best(matches)
		if best.NewPos == pos {
			return pos
		}
		pos = best.NewPos
	}
}

// At recognizes every terminal of expected at position pos of input,
// returning all maximal matches. layout, if non-nil, is applied
// first to advance pos past whitespace/comments; the returned matches'
// NewPos is relative to the layout-advanced position, not the original one.
//
// Callers that want the single best match (LR mode) should apply best() to
// the result; GLR callers keep every returned Match to fork over.
func At(input string, pos int, expected []*grammar.Symbol, layout *grammar.Grammar) []Match {
	pos = Layout(layout, input, pos)
	var out []Match
	for _, t := range expected {
		if t.IsEmpty() {
			out = append(out, Match{Terminal: t, Lexeme: "", NewPos: pos})
			continue
		}
		if t.IsStop() {
			continue // STOP is never matched from input text
		}
		m, ok := matchOne(input, pos, t)
		if ok {
			out = append(out, m)
		}
	}
	tracer().Debugf("recognize at %d: %d candidate(s) among %d expected", pos, len(out), len(expected))
	return out
}

// matchOne attempts a single terminal's recognizer at pos.
func matchOne(input string, pos int, t *grammar.Symbol) (Match, bool) {
	switch t.RecKind {
	case grammar.StringKind:
		if strings.HasPrefix(input[pos:], t.Pattern) {
			return Match{Terminal: t, Lexeme: t.Pattern, NewPos: pos + len(t.Pattern)}, true
		}
	case grammar.RegexKind:
		re, err := t.CompiledRegexp()
		if err != nil {
			return Match{}, false
		}
		loc := re.FindStringIndex(input[pos:])
		if loc == nil || loc[0] != 0 {
			return Match{}, false
		}
		return Match{Terminal: t, Lexeme: input[pos : pos+loc[1]], NewPos: pos + loc[1]}, true
	case grammar.CustomKind:
		lexeme, newPos, ok := t.Custom(input, pos)
		if ok {
			return Match{Terminal: t, Lexeme: lexeme, NewPos: newPos}, true
		}
	}
	return Match{}, false
}

// best applies the tie-break policy to a non-empty slice of
// matches: longest match wins; among equal lengths, string terminals beat
// regexp (and custom) terminals; among equals, declaration order (lowest
// Symbol.Index) wins.
func best(matches []Match) Match {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := len(sorted[i].Lexeme), len(sorted[j].Lexeme)
		if li != lj {
			return li > lj
		}
		pi, pj := rank(sorted[i].Terminal), rank(sorted[j].Terminal)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Terminal.Index < sorted[j].Terminal.Index
	})
	return sorted[0]
}

// Best returns the single match the deterministic LR runtime should take,
// applying the tie-break policy. It reports ok=false if matches is
// empty.
func Best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	return best(matches), true
}

func rank(t *grammar.Symbol) int {
	switch t.RecKind {
	case grammar.StringKind:
		return 0
	default:
		return 1
	}
}
