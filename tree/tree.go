/*
Package tree implements the default parse-tree building action: when a
grammar's semantic actions are omitted, reductions build a Node capturing
production index, children, and input span.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package tree

import (
	"strings"

	"github.com/kynrai/glr/grammar"
)

// Span is a half-open [Start, End) byte range into the input string.
type Span struct {
	Start, End int
}

// Node is a parse tree node: either a leaf carrying a matched terminal
// lexeme, or an interior node capturing the production it was reduced by
// and its children, in rhs order.
type Node struct {
	Symbol   *grammar.Symbol
	Prod     *grammar.Production // nil for leaves
	Lexeme   string              // set for leaves
	Children []*Node
	Span     Span
}

// Leaf builds a terminal tree node for a recognized token.
func Leaf(term *grammar.Symbol, lexeme string, span Span) *Node {
	return &Node{Symbol: term, Lexeme: lexeme, Span: span}
}

// Reduce builds the default tree node for a reduction by prod over the
// given children: if the rhs has exactly one element, the child is passed
// through unchanged (no wrapping node); otherwise a new interior node is
// built capturing (production, children, span).
func Reduce(prod *grammar.Production, children []*Node) *Node {
	span := spanOf(children)
	if len(prod.RHS) == 1 && len(children) == 1 {
		n := children[0]
		n.Span = span
		return n
	}
	return &Node{Symbol: prod.LHS, Prod: prod, Children: children, Span: span}
}

func spanOf(children []*Node) Span {
	if len(children) == 0 {
		return Span{}
	}
	return Span{Start: children[0].Span.Start, End: children[len(children)-1].Span.End}
}

// IsLeaf reports whether n is a terminal leaf.
func (n *Node) IsLeaf() bool { return n.Prod == nil && n.Children == nil }

// Leaves returns, in left-to-right order, every leaf reachable from n.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Serialize concatenates n's leaf lexemes, reinserting the given layout
// span text (keyed by the gap start offset) between leaves that were
// separated by skipped layout in the original input. Callers that don't track layout spans may pass a nil map, in
// which case leaves are concatenated with no separator.
func (n *Node) Serialize(layoutBetween map[int]string) string {
	var b strings.Builder
	leaves := n.Leaves()
	for i, leaf := range leaves {
		if i > 0 {
			if gap, ok := layoutBetween[leaves[i-1].Span.End]; ok {
				b.WriteString(gap)
			}
		}
		b.WriteString(leaf.Lexeme)
	}
	return b.String()
}
