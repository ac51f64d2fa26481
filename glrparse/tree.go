package glrparse

import (
	"github.com/kynrai/glr/sppf"
	"github.com/kynrai/glr/tree"
)

// leafValue turns a terminal SPPF node into the same *tree.Node leaf shape
// the deterministic LR runtime produces, so default-action evaluation is
// indistinguishable between the two runtimes.
func leafValue(n sppf.Node) interface{} {
	return tree.Leaf(n.Symbol, n.Lexeme, tree.Span{Start: n.Span.Start, End: n.Span.End})
}

func spanOf(n sppf.Node) tree.Span {
	return tree.Span{Start: n.Span.Start, End: n.Span.End}
}

// buildDefaultNode mirrors tree.Reduce for an SPPF packed alternative: a
// single-symbol rhs passes its child through, otherwise a new interior
// node is built.
func buildDefaultNode(pk sppf.Packed, children []interface{}, n sppf.Node) interface{} {
	if len(pk.Prod.RHS) == 1 && len(children) == 1 {
		return children[0]
	}
	nodeChildren := make([]*tree.Node, len(children))
	for i, c := range children {
		if tn, ok := c.(*tree.Node); ok {
			nodeChildren[i] = tn
		}
	}
	return &tree.Node{
		Symbol:   pk.Prod.LHS,
		Prod:     pk.Prod,
		Children: nodeChildren,
		Span:     tree.Span{Start: n.Span.Start, End: n.Span.End},
	}
}
