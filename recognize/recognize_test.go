package recognize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/recognize"
)

func testGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, _, err := grammar.FromStruct("t", []grammar.NonTerminalDef{
		{Name: "S", RHS: []grammar.RHS{{Symbols: []string{"IF"}}}},
	}, []grammar.TerminalDef{
		{Name: "IF", Spec: grammar.TerminalSpec{Kind: "string", Literal: "if"}},
		{Name: "ID", Spec: grammar.TerminalSpec{Kind: "regexp", Regexp: `[a-z]+`}},
	}, "S", nil)
	require.NoError(t, err)
	return g
}

func expectedOf(t *testing.T, g *grammar.Grammar, names ...string) []*grammar.Symbol {
	t.Helper()
	out := make([]*grammar.Symbol, len(names))
	for i, n := range names {
		sym, ok := g.Symbol(n)
		require.True(t, ok, "symbol %q must exist", n)
		out[i] = sym
	}
	return out
}

func TestAt_LongestMatchWins(t *testing.T) {
	g := testGrammar(t)
	matches := recognize.At("ifx", 0, expectedOf(t, g, "IF", "ID"), nil)
	require.Len(t, matches, 2, "both IF and ID candidate at position 0")

	m, ok := recognize.Best(matches)
	require.True(t, ok)
	assert.Equal(t, "ID", m.Terminal.Name, "ifx is 3 chars under ID vs 2 under IF")
	assert.Equal(t, "ifx", m.Lexeme)
}

func TestAt_StringBeatsRegexpOnEqualLength(t *testing.T) {
	g := testGrammar(t)
	matches := recognize.At("if", 0, expectedOf(t, g, "IF", "ID"), nil)
	require.Len(t, matches, 2)

	m, ok := recognize.Best(matches)
	require.True(t, ok)
	assert.Equal(t, "IF", m.Terminal.Name)
}

func TestAt_NoMatch(t *testing.T) {
	g := testGrammar(t)
	matches := recognize.At("123", 0, expectedOf(t, g, "IF", "ID"), nil)
	assert.Empty(t, matches)
	_, ok := recognize.Best(matches)
	assert.False(t, ok)
}

func TestAt_SkipsStopAndEmits(t *testing.T) {
	g := testGrammar(t)
	matches := recognize.At("", 0, []*grammar.Symbol{g.Stop, g.Empty}, nil)
	require.Len(t, matches, 1, "STOP is never matched from text, only EMPTY")
	assert.True(t, matches[0].Terminal.IsEmpty())
}

func TestLayout_SkipsWhitespace(t *testing.T) {
	layout, _, err := grammar.FromStruct("ws", []grammar.NonTerminalDef{
		{Name: "Layout", RHS: []grammar.RHS{{Symbols: nil}}},
	}, []grammar.TerminalDef{
		{Name: "WS", Spec: grammar.TerminalSpec{Kind: "regexp", Regexp: `\s+`}},
	}, "Layout", nil)
	require.NoError(t, err)

	pos := recognize.Layout(layout, "   abc", 0)
	assert.Equal(t, 3, pos)
}

func TestLayout_NilIsNoop(t *testing.T) {
	assert.Equal(t, 5, recognize.Layout(nil, "  abc", 5))
}

func TestAt_CustomRecognizer(t *testing.T) {
	custom := func(input string, pos int) (string, int, bool) {
		// recognizes a run of '#'
		end := pos
		for end < len(input) && input[end] == '#' {
			end++
		}
		if end == pos {
			return "", 0, false
		}
		return input[pos:end], end, true
	}
	g, _, err := grammar.FromStruct("t", []grammar.NonTerminalDef{
		{Name: "S", RHS: []grammar.RHS{{Symbols: []string{"HASHES"}}}},
	}, []grammar.TerminalDef{
		{Name: "HASHES", Spec: grammar.TerminalSpec{Kind: "custom", Custom: custom}},
	}, "S", nil)
	require.NoError(t, err)

	matches := recognize.At("###x", 0, expectedOf(t, g, "HASHES"), nil)
	require.Len(t, matches, 1)
	assert.Equal(t, "###", matches[0].Lexeme)
	assert.Equal(t, 3, matches[0].NewPos)

	assert.Empty(t, recognize.At("x", 0, expectedOf(t, g, "HASHES"), nil))
}
