/*
Package itemgraph builds the canonical collection of LR(1) item sets for a
grammar: closure, goto, and the characteristic state graph, with optional
LALR core-merging.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package itemgraph

import (
	"fmt"

	"github.com/kynrai/glr/grammar"
)

// Item is an LR(1) item: a production, a dot position and a single
// lookahead terminal. Two items are equal iff all three components
// match; Item is a plain comparable struct so it can be stored directly in
// an iteratable.Set or used as a map key.
type Item struct {
	Prod      *grammar.Production
	Dot       int
	Lookahead *grammar.Symbol
}

// PeekSymbol returns the symbol immediately after the dot, or nil if the
// dot is at the end of the production (the item is "complete").
func (i Item) PeekSymbol() *grammar.Symbol {
	if i.Dot >= len(i.Prod.RHS) {
		return nil
	}
	return i.Prod.RHS[i.Dot]
}

// Rest returns the symbols of the production after the dot.
func (i Item) Rest() []*grammar.Symbol {
	if i.Dot >= len(i.Prod.RHS) {
		return nil
	}
	return i.Prod.RHS[i.Dot+1:]
}

// IsComplete reports whether the dot has reached the end of the rhs.
func (i Item) IsComplete() bool { return i.Dot >= len(i.Prod.RHS) }

// Advance returns a copy of i with the dot moved one position to the
// right.
func (i Item) Advance() Item {
	return Item{Prod: i.Prod, Dot: i.Dot + 1, Lookahead: i.Lookahead}
}

// Core is the LR(0) part of an item (production + dot), used to test
// whether two LR(1) states share the same core for LALR merging.
type Core struct {
	Prod *grammar.Production
	Dot  int
}

func (i Item) core() Core { return Core{Prod: i.Prod, Dot: i.Dot} }

func (i Item) String() string {
	var rhs string
	for k, s := range i.Prod.RHS {
		if k == i.Dot {
			rhs += "·"
		}
		rhs += s.Name + " "
	}
	if i.Dot == len(i.Prod.RHS) {
		rhs += "·"
	}
	return fmt.Sprintf("[%s -> %s, %s]", i.Prod.LHS.Name, rhs, i.Lookahead.Name)
}
