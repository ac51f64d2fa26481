package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/tree"
)

func buildGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, _, err := grammar.FromStruct("t", []grammar.NonTerminalDef{
		{Name: "E", RHS: []grammar.RHS{
			{Symbols: []string{"E", "+", "E"}},
			{Symbols: []string{"NUM"}},
		}},
	}, []grammar.TerminalDef{
		{Name: "+", Spec: grammar.TerminalSpec{Kind: "string", Literal: "+"}},
		{Name: "NUM", Spec: grammar.TerminalSpec{Kind: "regexp", Regexp: `[0-9]+`}},
	}, "E", nil)
	require.NoError(t, err)
	return g
}

func TestReduce_SingleSymbolPassesThroughUnwrapped(t *testing.T) {
	g := buildGrammar(t)
	num, _ := g.Symbol("NUM")
	leaf := tree.Leaf(num, "42", tree.Span{Start: 0, End: 2})

	numProd := g.Productions[2] // E -> NUM
	out := tree.Reduce(numProd, []*tree.Node{leaf})

	assert.Same(t, leaf, out, "single-symbol rhs must not wrap the child")
	assert.True(t, out.IsLeaf())
}

func TestReduce_MultiSymbolWrapsWithSpan(t *testing.T) {
	g := buildGrammar(t)
	num, _ := g.Symbol("NUM")
	plus, _ := g.Symbol("+")

	left := tree.Leaf(num, "1", tree.Span{Start: 0, End: 1})
	op := tree.Leaf(plus, "+", tree.Span{Start: 1, End: 2})
	right := tree.Leaf(num, "2", tree.Span{Start: 2, End: 3})

	binProd := g.Productions[1] // E -> E + E
	out := tree.Reduce(binProd, []*tree.Node{left, op, right})

	require.False(t, out.IsLeaf())
	assert.Equal(t, "E", out.Symbol.Name)
	assert.Equal(t, tree.Span{Start: 0, End: 3}, out.Span)
	assert.Len(t, out.Children, 3)
}

func TestLeavesAndSerialize(t *testing.T) {
	g := buildGrammar(t)
	num, _ := g.Symbol("NUM")
	plus, _ := g.Symbol("+")

	left := tree.Leaf(num, "1", tree.Span{Start: 0, End: 1})
	op := tree.Leaf(plus, "+", tree.Span{Start: 1, End: 2})
	right := tree.Leaf(num, "2", tree.Span{Start: 2, End: 3})
	binProd := g.Productions[1]
	out := tree.Reduce(binProd, []*tree.Node{left, op, right})

	leaves := out.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "1", leaves[0].Lexeme)
	assert.Equal(t, "2", leaves[2].Lexeme)

	assert.Equal(t, "1+2", out.Serialize(nil))
	assert.Equal(t, "1 + 2", out.Serialize(map[int]string{1: " ", 2: " "}))
}
