package glr

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/tree"
)

// arithmeticGrammar builds an expression grammar: the five binary
// operators with standard precedence/associativity, parenthesization and
// number literals, wired with actions that compute the value directly.
func arithmeticGrammar(t *testing.T, parserType ParserType) *Compiled {
	t.Helper()

	productions := []NonTerminalDef{
		{Name: "E", RHS: []RHS{
			{Symbols: []string{"E", "+", "E"}, Assoc: grammar.LeftAssoc},
			{Symbols: []string{"E", "-", "E"}, Assoc: grammar.LeftAssoc},
			{Symbols: []string{"E", "*", "E"}, Assoc: grammar.LeftAssoc},
			{Symbols: []string{"E", "/", "E"}, Assoc: grammar.LeftAssoc},
			{Symbols: []string{"E", "^", "E"}, Assoc: grammar.RightAssoc},
			{Symbols: []string{"(", "E", ")"}},
			{Symbols: []string{"NUMBER"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "+", Spec: TerminalSpec{Kind: "string", Literal: "+", Priority: 1}},
		{Name: "-", Spec: TerminalSpec{Kind: "string", Literal: "-", Priority: 1}},
		{Name: "*", Spec: TerminalSpec{Kind: "string", Literal: "*", Priority: 2}},
		{Name: "/", Spec: TerminalSpec{Kind: "string", Literal: "/", Priority: 2}},
		{Name: "^", Spec: TerminalSpec{Kind: "string", Literal: "^", Priority: 3}},
		{Name: "(", Spec: TerminalSpec{Kind: "string", Literal: "("}},
		{Name: ")", Spec: TerminalSpec{Kind: "string", Literal: ")"}},
		{Name: "NUMBER", Spec: TerminalSpec{Kind: "regexp", Regexp: `[0-9]+(\.[0-9]+)?`}},
	}

	num := func(v interface{}) float64 {
		n := v.(*tree.Node)
		f, err := strconv.ParseFloat(n.Lexeme, 64)
		require.NoError(t, err)
		return f
	}
	bin := func(op func(a, b float64) float64) ActionFunc {
		return func(ctx *ActionContext, children []interface{}) interface{} {
			return op(children[0].(float64), children[2].(float64))
		}
	}

	layout := whitespaceLayout(t)

	actions := Actions{
		"E": []ActionFunc{
			bin(func(a, b float64) float64 { return a + b }),
			bin(func(a, b float64) float64 { return a - b }),
			bin(func(a, b float64) float64 { return a * b }),
			bin(func(a, b float64) float64 { return a / b }),
			bin(func(a, b float64) float64 { return float64Pow(a, b) }),
			func(ctx *ActionContext, children []interface{}) interface{} { return children[1] },
			func(ctx *ActionContext, children []interface{}) interface{} { return num(children[0]) },
		},
	}

	c, err := FromStruct("arithmetic", productions, terminals, "E", Options{
		ParserType: parserType,
		TableType:  LALR,
		Actions:    actions,
		Layout:     layout,
	})
	require.NoError(t, err)
	return c
}

// whitespaceLayout builds a minimal layout Grammar recognizing runs of
// whitespace. Its own productions are never parsed (the Recognizer only
// consults a layout grammar's Terminals); a trivial epsilon start
// production is enough to satisfy FromStruct's validation.
func whitespaceLayout(t *testing.T) *Grammar {
	t.Helper()
	layout, _, err := grammar.FromStruct("layout", []NonTerminalDef{
		{Name: "Layout", RHS: []RHS{{Symbols: nil}}},
	}, []TerminalDef{
		{Name: "WS", Spec: TerminalSpec{Kind: "regexp", Regexp: `\s+`}},
	}, "Layout", nil)
	require.NoError(t, err)
	return layout
}

func float64Pow(a, b float64) float64 {
	result := 1.0
	for i := 0; i < int(b); i++ {
		result *= a
	}
	return result
}

func TestArithmeticPrecedence_LR(t *testing.T) {
	c := arithmeticGrammar(t, LR)
	v, err := c.Parse("34 + 4.6 / 2 * 4^2^2 + 78", nil)
	require.NoError(t, err)
	assert.InDelta(t, 700.8, v.(float64), 1e-9)
}

func TestArithmeticPrecedence_GLR(t *testing.T) {
	c := arithmeticGrammar(t, GLR)
	v, err := c.Parse("34 + 4.6 / 2 * 4^2^2 + 78", nil)
	require.NoError(t, err)
	assert.InDelta(t, 700.8, v.(float64), 1e-9)
}

// TestDanglingElse exercises the classic dangling-else ambiguity,
// resolved by preferring shift (else binds to the nearest if).
func TestDanglingElse(t *testing.T) {
	productions := []NonTerminalDef{
		{Name: "S", RHS: []RHS{
			{Symbols: []string{"if", "E", "then", "S"}, Priority: 1, Assoc: grammar.RightAssoc},
			{Symbols: []string{"if", "E", "then", "S", "else", "S"}, Priority: 1, Assoc: grammar.RightAssoc},
			{Symbols: []string{"x"}},
		}},
		{Name: "E", RHS: []RHS{
			{Symbols: []string{"a"}},
			{Symbols: []string{"b"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "if", Spec: TerminalSpec{Kind: "string", Literal: "if"}},
		{Name: "then", Spec: TerminalSpec{Kind: "string", Literal: "then", Priority: 1}},
		{Name: "else", Spec: TerminalSpec{Kind: "string", Literal: "else", Priority: 1}},
		{Name: "x", Spec: TerminalSpec{Kind: "string", Literal: "x"}},
		{Name: "a", Spec: TerminalSpec{Kind: "string", Literal: "a"}},
		{Name: "b", Spec: TerminalSpec{Kind: "string", Literal: "b"}},
	}

	c, err := FromStruct("dangling-else", productions, terminals, "S", Options{
		ParserType: LR,
		TableType:  LALR,
		Layout:     whitespaceLayout(t),
	})
	require.NoError(t, err)

	v, err := c.Parse("if a then if b then x else x", nil)
	require.NoError(t, err)

	n := v.(*tree.Node)
	require.Equal(t, "S", n.Symbol.Name)
	// Outer production must be the plain `if E then S` alternative: the
	// trailing `else x` binds to the nested if, not this one.
	assert.Len(t, n.Children, 4)
	inner := n.Children[3]
	assert.Equal(t, "S", inner.Symbol.Name)
	assert.Len(t, inner.Children, 6, "inner S must be the if-then-else alternative")
}

// TestEmptyProduction exercises an ε-alternative in a comma list.
func TestEmptyProduction(t *testing.T) {
	productions := []NonTerminalDef{
		{Name: "L", RHS: []RHS{
			{Symbols: []string{"L", ",", "X"}},
			{Symbols: []string{"X"}},
			{Symbols: nil},
		}},
		{Name: "X", RHS: []RHS{{Symbols: []string{"a"}}, {Symbols: []string{"b"}}}},
	}
	terminals := []TerminalDef{
		{Name: ",", Spec: TerminalSpec{Kind: "string", Literal: ","}},
		{Name: "a", Spec: TerminalSpec{Kind: "string", Literal: "a"}},
		{Name: "b", Spec: TerminalSpec{Kind: "string", Literal: "b"}},
	}
	c, err := FromStruct("empty-production", productions, terminals, "L", Options{
		ParserType: LR,
		TableType:  LALR,
		Layout:     whitespaceLayout(t),
	})
	require.NoError(t, err)

	v, err := c.Parse("", nil)
	require.NoError(t, err)
	n := v.(*tree.Node)
	assert.Equal(t, "L", n.Symbol.Name)

	v2, err := c.Parse("a , b", nil)
	require.NoError(t, err)
	leaves := v2.(*tree.Node).Leaves()
	var letters []string
	for _, l := range leaves {
		if l.Symbol.Name == "a" || l.Symbol.Name == "b" {
			letters = append(letters, l.Symbol.Name)
		}
	}
	assert.Equal(t, []string{"a", "b"}, letters)
}

// TestAmbiguousEE: `E -> E E | a` on "a a a" has exactly Catalan(3)=2
// derivations under GLR; requesting a single tree raises AmbiguityError.
func TestAmbiguousEE(t *testing.T) {
	productions := []NonTerminalDef{
		{Name: "E", RHS: []RHS{
			{Symbols: []string{"E", "E"}},
			{Symbols: []string{"a"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "a", Spec: TerminalSpec{Kind: "string", Literal: "a"}},
	}
	c, err := FromStruct("ambiguous-ee", productions, terminals, "E", Options{
		ParserType: GLR,
		TableType:  LALR,
		Layout:     whitespaceLayout(t),
	})
	require.NoError(t, err)

	res, err := c.ParseForest("a a a")
	require.NoError(t, err)
	require.Len(t, res.Roots, 1)
	assert.True(t, res.Forest.IsAmbiguous(res.Roots[0]))
	assert.Len(t, res.Forest.At(res.Roots[0]).Packed, 2, "a a a must admit exactly Catalan(3)=2 derivations")

	_, err = c.Parse("a a a", nil)
	assert.Error(t, err)
	_, ok := err.(*AmbiguityError)
	assert.True(t, ok)
}

// TestScannerlessKeywordPrefix: IF and ID both match at position 0 of
// "if"; the equal-length tie is broken in favor of the string terminal.
func TestScannerlessKeywordPrefix(t *testing.T) {
	productions := []NonTerminalDef{
		{Name: "S", RHS: []RHS{
			{Symbols: []string{"IF"}},
			{Symbols: []string{"ID"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "IF", Spec: TerminalSpec{Kind: "string", Literal: "if"}},
		{Name: "ID", Spec: TerminalSpec{Kind: "regexp", Regexp: `[a-z]+`}},
	}
	c, err := FromStruct("keyword-prefix", productions, terminals, "S", Options{ParserType: LR, TableType: LALR})
	require.NoError(t, err)

	v, err := c.Parse("if", nil)
	require.NoError(t, err)
	n := v.(*tree.Node)
	assert.Equal(t, "IF", n.Symbol.Name)
}

// TestLayoutSkipping parses across whitespace and block comments.
func TestLayoutSkipping(t *testing.T) {
	layout, _, err := grammar.FromStruct("ws", []NonTerminalDef{
		{Name: "Layout", RHS: []RHS{{Symbols: nil}}},
	}, []TerminalDef{
		{Name: "WS", Spec: TerminalSpec{Kind: "regexp", Regexp: `\s+|/\*.*?\*/`}},
	}, "Layout", nil)
	require.NoError(t, err)

	productions := []NonTerminalDef{
		{Name: "E", RHS: []RHS{
			{Symbols: []string{"E", "+", "E"}, Assoc: grammar.LeftAssoc},
			{Symbols: []string{"ID"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "+", Spec: TerminalSpec{Kind: "string", Literal: "+"}},
		{Name: "ID", Spec: TerminalSpec{Kind: "regexp", Regexp: `[a-z]+`}},
	}
	c, err := FromStruct("layout", productions, terminals, "E", Options{
		ParserType: LR,
		TableType:  LALR,
		Layout:     layout,
	})
	require.NoError(t, err)

	v, err := c.Parse("a  /*c*/  +  b", nil)
	require.NoError(t, err)
	n := v.(*tree.Node)
	leaves := n.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "a", leaves[0].Lexeme)
	assert.Equal(t, "+", leaves[1].Lexeme)
	assert.Equal(t, "b", leaves[2].Lexeme)
}

// treeShape flattens a parse tree into a structural signature so trees
// from two independently compiled grammars can be compared.
func treeShape(n *tree.Node) string {
	if n.IsLeaf() {
		return n.Lexeme
	}
	s := n.Symbol.Name + "("
	for i, c := range n.Children {
		if i > 0 {
			s += " "
		}
		s += treeShape(c)
	}
	return s + ")"
}

// TestGLRMatchesLROnUnambiguousGrammar: both runtimes must produce the
// same tree when the grammar admits only one derivation.
func TestGLRMatchesLROnUnambiguousGrammar(t *testing.T) {
	productions := []NonTerminalDef{
		{Name: "S", RHS: []RHS{
			{Symbols: []string{"a", "S", "b"}},
			{Symbols: []string{"c"}},
		}},
	}
	terminals := []TerminalDef{
		{Name: "a", Spec: TerminalSpec{Kind: "string", Literal: "a"}},
		{Name: "b", Spec: TerminalSpec{Kind: "string", Literal: "b"}},
		{Name: "c", Spec: TerminalSpec{Kind: "string", Literal: "c"}},
	}

	lr, err := FromStruct("nested-lr", productions, terminals, "S", Options{ParserType: LR, TableType: LALR})
	require.NoError(t, err)
	glr, err := FromStruct("nested-glr", productions, terminals, "S", Options{ParserType: GLR, TableType: LALR})
	require.NoError(t, err)

	input := "aacbb"
	vLR, err := lr.Parse(input, nil)
	require.NoError(t, err)
	vGLR, err := glr.Parse(input, nil)
	require.NoError(t, err)

	assert.Equal(t, treeShape(vLR.(*tree.Node)), treeShape(vGLR.(*tree.Node)))
}

// TestParseErrorReportsExpectedSet: a dead end must name the position and
// the terminals the state was prepared to accept.
func TestParseErrorReportsExpectedSet(t *testing.T) {
	c := arithmeticGrammar(t, LR)
	_, err := c.Parse("1 + + 2", nil)
	require.Error(t, err)

	perr, ok := err.(*ParseErrorLR)
	require.True(t, ok)
	assert.Equal(t, 4, perr.Position)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Expected, "NUMBER")
	assert.Contains(t, perr.Found, "+ 2")
}

// TestGLRParseError: the generalized runtime reports a dead frontier the
// same way.
func TestGLRParseError(t *testing.T) {
	c := arithmeticGrammar(t, GLR)
	_, err := c.Parse("1 + + 2", nil)
	require.Error(t, err)
	_, ok := err.(*ParseErrorGLR)
	assert.True(t, ok)
}
