/*
Package table builds ACTION/GOTO tables from a canonical LR(1) item graph,
resolving shift/reduce and reduce/reduce conflicts by production/terminal
priority and associativity.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package table

import (
	"fmt"

	"github.com/kynrai/glr/grammar"
)

// Kind distinguishes the flavor of an Action.
type Kind int

const (
	Shift Kind = iota
	Reduce
	Accept
)

func (k Kind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	default:
		return "unknown"
	}
}

// Action is one ACTION-table cell entry: either shift to State, reduce by
// Prod, or accept.
type Action struct {
	Kind  Kind
	State int                 // target state, for Shift
	Prod  *grammar.Production // production to reduce by, for Reduce
}

func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("shift %d", a.State)
	case Reduce:
		return fmt.Sprintf("reduce %s", a.Prod)
	case Accept:
		return "accept"
	default:
		return "?"
	}
}

// Equal reports whether two actions denote the same transition, used to
// de-duplicate GLR action sets.
func (a Action) Equal(other Action) bool {
	if a.Kind != other.Kind {
		return false
	}
	switch a.Kind {
	case Shift:
		return a.State == other.State
	case Reduce:
		return a.Prod == other.Prod
	default:
		return true
	}
}

// LRConflictError is raised (in LR mode) when a cell has more than one
// possible action and priority/associativity does not resolve it.
type LRConflictError struct {
	State    int
	Terminal *grammar.Symbol
	Actions  []Action
}

func (e *LRConflictError) Error() string {
	return fmt.Sprintf("unresolved conflict in state %d on %q: %d candidate actions", e.State, e.Terminal.Name, len(e.Actions))
}
