package table

import (
	"github.com/kynrai/glr/firstset"
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/internal/sparse"
	"github.com/kynrai/glr/itemgraph"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.table")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// Tables is the compiled ACTION/GOTO pair a runtime drives.
//
// Action holds every surviving action per (state, terminal) cell. In LR
// mode this slice always has length 1 (conflicts are either resolved or
// raised as an error during Build); in GLR mode a cell may retain more than
// one action so the runtime can fork.
type Tables struct {
	g       *grammar.Grammar
	graph   *itemgraph.Graph
	action  map[int]map[*grammar.Symbol][]Action
	gotoTbl *sparse.IntMatrix // row=state, col=non-terminal index, value=target state
}

// Actions returns the (possibly empty) list of actions for (state, term).
func (t *Tables) Actions(state int, term *grammar.Symbol) []Action {
	row, ok := t.action[state]
	if !ok {
		return nil
	}
	return row[term]
}

// Goto returns the target state for (state, nonTerminal), or -1 if absent.
func (t *Tables) Goto(state int, nonTerminal *grammar.Symbol) int {
	v := t.gotoTbl.Value(state, nonTerminal.Index)
	if v == t.gotoTbl.NullValue() {
		return -1
	}
	return int(v)
}

// ExpectedTerminals lists every terminal with at least one action defined in
// state, for diagnostic messages.
func (t *Tables) ExpectedTerminals(state int) []*grammar.Symbol {
	row := t.action[state]
	out := make([]*grammar.Symbol, 0, len(row))
	for term, actions := range row {
		if len(actions) > 0 {
			out = append(out, term)
		}
	}
	return out
}

// Build compiles ACTION/GOTO tables from the canonical item graph. When glr
// is false, every shift/reduce and reduce/reduce conflict must resolve to a
// single surviving action via priority/associativity; an unresolved
// conflict is returned as an *LRConflictError. When glr is true, unresolved
// conflicts are kept as multiple actions in the same cell instead of
// erroring, so the GLR runtime can fork over them.
func Build(g *grammar.Grammar, first *firstset.Sets, graph *itemgraph.Graph, glr bool) (*Tables, error) {
	t := &Tables{
		g:       g,
		graph:   graph,
		action:  make(map[int]map[*grammar.Symbol][]Action),
		gotoTbl: sparse.NewIntMatrix(len(graph.States), g.NumSymbols(), sparse.DefaultNullValue),
	}

	for _, s := range graph.States {
		row := make(map[*grammar.Symbol][]Action)
		t.action[s.ID] = row

		// Shift actions: one per terminal the state has a goto transition on.
		for sym, target := range graph.Goto[s.ID] {
			if sym.IsTerminal() {
				row[sym] = append(row[sym], Action{Kind: Shift, State: target})
			} else {
				t.gotoTbl.Set(s.ID, sym.Index, int32(target))
			}
		}

		// Reduce / accept actions: one per complete item, keyed by its
		// lookahead.
		for _, v := range s.Items.Values() {
			it := v.(itemgraph.Item)
			if !it.IsComplete() {
				continue
			}
			if it.Prod.LHS == g.AugmentedStart {
				row[it.Lookahead] = append(row[it.Lookahead], Action{Kind: Accept})
				continue
			}
			row[it.Lookahead] = append(row[it.Lookahead], Action{Kind: Reduce, Prod: it.Prod})
		}

		for term, actions := range row {
			resolved, err := resolveConflicts(s.ID, term, actions, glr)
			if err != nil {
				return nil, err
			}
			row[term] = resolved
		}
	}

	tracer().Debugf("built tables: %d states, glr=%v", len(graph.States), glr)
	return t, nil
}

// resolveConflicts collapses actions down using priority/associativity
//:
//
//   - shift/reduce: higher EffectivePriority wins; equal priority defers to
//     the production's EffectiveAssoc (LeftAssoc -> reduce, RightAssoc ->
//     shift, NoAssoc -> unresolved);
//   - reduce/reduce: the strictly higher EffectivePriority wins; on a tie
//     both productions are retained.
//
// In LR mode an unresolved tie after these rules is an error; in GLR mode
// every surviving candidate (there may be more than one) is kept.
func resolveConflicts(state int, term *grammar.Symbol, actions []Action, glr bool) ([]Action, error) {
	if len(actions) <= 1 {
		return actions, nil
	}

	var shifts, reduces []Action
	var accepts []Action
	for _, a := range actions {
		switch a.Kind {
		case Shift:
			shifts = append(shifts, a)
		case Reduce:
			reduces = append(reduces, a)
		case Accept:
			accepts = append(accepts, a)
		}
	}
	if len(accepts) > 0 {
		// ACCEPT always coexists only with itself; nothing to arbitrate.
		return accepts, nil
	}

	if len(shifts) > 0 && len(reduces) > 0 {
		termPrio := term.Priority
		if termPrio == 0 {
			termPrio = grammar.DefaultPriority
		}
		var survivors []Action
		var unresolved bool
		for _, r := range reduces {
			rp := r.Prod.EffectivePriority()
			switch {
			case rp > termPrio:
				survivors = appendUnique(survivors, r)
			case rp < termPrio:
				survivors = appendUnique(survivors, shifts...)
			default:
				switch r.Prod.EffectiveAssoc() {
				case grammar.LeftAssoc:
					survivors = appendUnique(survivors, r)
				case grammar.RightAssoc:
					survivors = appendUnique(survivors, shifts...)
				default:
					unresolved = true
					survivors = appendUnique(survivors, r)
					survivors = appendUnique(survivors, shifts...)
				}
			}
		}
		if unresolved && !glr {
			return nil, &LRConflictError{State: state, Terminal: term, Actions: actions}
		}
		if !glr {
			return dedupSingle(state, term, survivors)
		}
		return survivors, nil
	}

	if len(reduces) > 1 {
		best := reduces[0].Prod.EffectivePriority()
		for _, r := range reduces[1:] {
			if p := r.Prod.EffectivePriority(); p > best {
				best = p
			}
		}
		var survivors []Action
		for _, r := range reduces {
			if r.Prod.EffectivePriority() == best {
				survivors = appendUnique(survivors, r)
			}
		}
		if glr {
			return survivors, nil
		}
		return dedupSingle(state, term, survivors)
	}

	return actions, nil
}

func appendUnique(actions []Action, add ...Action) []Action {
	for _, a := range add {
		found := false
		for _, existing := range actions {
			if existing.Equal(a) {
				found = true
				break
			}
		}
		if !found {
			actions = append(actions, a)
		}
	}
	return actions
}

// dedupSingle collapses a resolved-but-possibly-duplicated survivor list
// down to exactly one action for LR mode, erroring if more than one
// distinct action remains.
func dedupSingle(state int, term *grammar.Symbol, survivors []Action) ([]Action, error) {
	if len(survivors) == 1 {
		return survivors, nil
	}
	return nil, &LRConflictError{State: state, Terminal: term, Actions: survivors}
}
