/*
Package action implements semantic action dispatch during reduction: a
mapping from non-terminal to an ordered list of action functions, indexed
by the production's position within that non-terminal's alternatives. When no action is registered for a
production, the default tree-builder of package tree applies.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package action

import (
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/tree"
)

// Context is passed to every action function: the span the reduction
// covers, the production being reduced, and opaque user state threaded
// through by the caller.
type Context struct {
	Span  tree.Span
	Prod  *grammar.Production
	State interface{}
}

// Func is a single semantic action: given a context and the already
// computed values of the production's rhs symbols, it returns the value
// for the lhs.
type Func func(ctx *Context, children []interface{}) interface{}

// Table maps a non-terminal name to its actions, one per rhs alternative,
// in the declaration order productions appear for that non-terminal.
type Table map[string][]Func

// Dispatch resolves the action function for prod, given its ordinal
// position among its own non-terminal's alternatives. ok is false when no Table was
// supplied or no action is registered for this production, in which case
// the caller should fall back to the default tree-building action.
func Dispatch(actions Table, prod *grammar.Production, altIndex int) (Func, bool) {
	if actions == nil {
		return nil, false
	}
	fns, ok := actions[prod.LHS.Name]
	if !ok || altIndex < 0 || altIndex >= len(fns) || fns[altIndex] == nil {
		return nil, false
	}
	return fns[altIndex], true
}

// AltIndex computes a production's ordinal position among every production
// sharing its lhs, in the Grammar's declaration order.
func AltIndex(g *grammar.Grammar, prod *grammar.Production) int {
	idx := 0
	for _, p := range g.Productions {
		if p == prod {
			return idx
		}
		if p.LHS == prod.LHS {
			idx++
		}
	}
	return -1
}
