package itemgraph

import (
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/kynrai/glr/firstset"
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/internal/iteratable"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.itemgraph")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// State is a node of the canonical LR(1) collection: a dense state_id and
// the set of items it contains").
type State struct {
	ID    int
	Items *iteratable.Set // of Item
}

func (s *State) itemsSlice() []Item {
	vals := s.Items.Values()
	out := make([]Item, len(vals))
	for i, v := range vals {
		out[i] = v.(Item)
	}
	return out
}

// Graph is the canonical collection of LR(1) states plus the goto relation
// between them.
type Graph struct {
	States []*State
	// Goto[stateID][symbol] = targetStateID
	Goto map[int]map[*grammar.Symbol]int

	g     *grammar.Grammar
	first *firstset.Sets

	// sigs is the canonical set of known state signatures, ordered for
	// deterministic traversal; bySig maps a signature back to its state so
	// findOrAddState need not scan gr.States linearly.
	sigs  *treeset.Set
	bySig map[string]*State
}

// Start returns the initial state (state 0), containing the closure of
// `{(prod 0, dot=0, lookahead=STOP)}`.
func (gr *Graph) Start() *State { return gr.States[0] }

// Build constructs the canonical LR(1) item-set collection for g via BFS
// over goto transitions. When lalr is true, states with identical
// LR(0) cores are merged afterwards and their lookaheads unioned; if a
// merge would introduce a reduce/reduce conflict, a Diagnostic is returned
// but the merge proceeds regardless).
func Build(g *grammar.Grammar, first *firstset.Sets, lalr bool) (*Graph, []grammar.Diagnostic, error) {
	gr := &Graph{
		g:     g,
		first: first,
		Goto:  make(map[int]map[*grammar.Symbol]int),
		sigs:  treeset.NewWith(utils.StringComparator),
		bySig: make(map[string]*State),
	}

	startItem := Item{Prod: g.Productions[0], Dot: 0, Lookahead: g.Stop}
	seed := iteratable.New(1)
	seed.Add(startItem)
	s0 := gr.addState(gr.closure(seed))

	queue := arraylist.New()
	queue.Add(s0)
	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		s := v.(*State)

		symbols := symbolsAfterDot(s)
		for _, sym := range symbols {
			gset := gr.gotoSet(s.Items, sym)
			if gset.Empty() {
				continue
			}
			target, isNew := gr.findOrAddState(gset)
			if gr.Goto[s.ID] == nil {
				gr.Goto[s.ID] = make(map[*grammar.Symbol]int)
			}
			gr.Goto[s.ID][sym] = target.ID
			if isNew {
				queue.Add(target)
			}
			tracer().Debugf("goto(%d, %s) = %d", s.ID, sym.Name, target.ID)
		}
	}

	var diagnostics []grammar.Diagnostic
	if lalr {
		diagnostics = gr.mergeLALRCores()
	}
	tracer().Debugf("built item graph: %d states", len(gr.States))
	return gr, diagnostics, nil
}

// addState registers a freshly-built (never-before-seen) item set as a new
// state and indexes its signature.
func (gr *Graph) addState(items *iteratable.Set) *State {
	s := &State{ID: len(gr.States), Items: items}
	gr.States = append(gr.States, s)
	sig := itemSetSignature(items)
	gr.sigs.Add(sig)
	gr.bySig[sig] = s
	return s
}

// findOrAddState returns an existing state with the same item set, or adds
// a new one. State identity is structural: a state's signature is a
// canonical string over its (production, dot, lookahead) triples, looked up
// in gr.sigs/gr.bySig rather than scanning gr.States linearly.
func (gr *Graph) findOrAddState(items *iteratable.Set) (*State, bool) {
	sig := itemSetSignature(items)
	if gr.sigs.Contains(sig) {
		return gr.bySig[sig], false
	}
	return gr.addState(items), true
}

// itemSetSignature produces a canonical string over an item set's sorted
// (production index, dot, lookahead index) triples, used as the structural
// identity key for state deduplication.
func itemSetSignature(items *iteratable.Set) string {
	vals := items.Values()
	ids := make([]int, len(vals))
	triples := make(map[int]Item, len(vals))
	for i, v := range vals {
		it := v.(Item)
		id := (it.Prod.Index*1000+it.Dot)*100000 + it.Lookahead.Index
		ids[i] = id
		triples[id] = it
	}
	sort.Ints(ids)
	sig := ""
	for _, id := range ids {
		it := triples[id]
		sig += itoa(it.Prod.Index) + "." + itoa(it.Dot) + "#" + itoa(it.Lookahead.Index) + ";"
	}
	return sig
}

// closure computes the closure of an item set: while any item
// `A → α·Bβ, a` has B non-terminal, add `B → ·γ, b` for every production
// `B → γ` and every `b ∈ FIRST(βa)`.
func (gr *Graph) closure(items *iteratable.Set) *iteratable.Set {
	c := items.Copy()
	c.IterateOnce()
	for c.Next() {
		it := c.Item().(Item)
		B := it.PeekSymbol()
		if B == nil || B.IsTerminal() {
			continue
		}
		lookaheads := gr.first.FirstOfSequence(it.Rest(), it.Lookahead)
		for _, prod := range gr.g.Productions {
			if prod.LHS != B {
				continue
			}
			for _, a := range lookaheads {
				c.Add(Item{Prod: prod, Dot: 0, Lookahead: a})
			}
		}
	}
	return c
}

// gotoSet computes `goto(I, X) = closure({ A -> aX.b, a | A -> a.Xb, a in I })`.
func (gr *Graph) gotoSet(items *iteratable.Set, X *grammar.Symbol) *iteratable.Set {
	advanced := iteratable.New(4)
	for _, v := range items.Values() {
		it := v.(Item)
		if it.PeekSymbol() == X {
			advanced.Add(it.Advance())
		}
	}
	return gr.closure(advanced)
}

// symbolsAfterDot collects, in a stable order, every symbol that appears
// immediately after a dot in s.
func symbolsAfterDot(s *State) []*grammar.Symbol {
	seen := make(map[*grammar.Symbol]bool)
	var out []*grammar.Symbol
	for _, it := range s.itemsSlice() {
		if sym := it.PeekSymbol(); sym != nil && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// --- LALR merging -----------------------------------------------------------

// mergeLALRCores merges states sharing an identical LR(0) core, unioning
// their lookaheads. Returns a Diagnostic per merge group that
// introduces a reduce/reduce conflict (detected as two distinct complete
// items in the merged state sharing a lookahead).
func (gr *Graph) mergeLALRCores() []grammar.Diagnostic {
	groups := make(map[string][]*State)
	order := make([]string, 0)
	for _, s := range gr.States {
		key := coreKey(s)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	var diagnostics []grammar.Diagnostic
	remapID := make(map[int]int) // old state ID -> representative state ID
	var merged []*State
	for _, key := range order {
		group := groups[key]
		rep := group[0]
		for _, other := range group[1:] {
			for _, v := range other.Items.Values() {
				rep.Items.Add(v)
			}
			remapID[other.ID] = rep.ID
		}
		remapID[rep.ID] = rep.ID
		merged = append(merged, rep)
		if len(group) > 1 {
			if hasReduceReduceConflict(rep) {
				diagnostics = append(diagnostics, grammar.Diagnostic{
					Message: "LALR merge of states with core " + key + " introduced a reduce/reduce conflict",
				})
			}
		}
	}

	// Renumber representative states densely, starting at 0, preserving the
	// position of the start state.
	newIndex := make(map[int]int)
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	for i, s := range merged {
		newIndex[s.ID] = i
	}

	newGoto := make(map[int]map[*grammar.Symbol]int)
	for oldFrom, row := range gr.Goto {
		repFrom := remapID[oldFrom]
		newFrom := newIndex[repFrom]
		if newGoto[newFrom] == nil {
			newGoto[newFrom] = make(map[*grammar.Symbol]int)
		}
		for sym, oldTo := range row {
			repTo := remapID[oldTo]
			newGoto[newFrom][sym] = newIndex[repTo]
		}
	}

	for i, s := range merged {
		s.ID = i
	}
	gr.States = merged
	gr.Goto = newGoto
	return diagnostics
}

// coreKey produces a stable string key for the LR(0) core of a state,
// independent of lookaheads.
func coreKey(s *State) string {
	cores := make(map[Core]bool)
	for _, it := range s.itemsSlice() {
		cores[it.core()] = true
	}
	ids := make([]int, 0, len(cores))
	idx := make(map[int]Core)
	for c := range cores {
		id := c.Prod.Index*1000 + c.Dot
		ids = append(ids, id)
		idx[id] = c
	}
	sort.Ints(ids)
	key := ""
	for _, id := range ids {
		c := idx[id]
		key += string(rune('A'+c.Prod.Index%26)) + "#" + itoa(c.Prod.Index) + "." + itoa(c.Dot) + ";"
	}
	return key
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// hasReduceReduceConflict reports whether s contains two distinct complete
// items (different productions) sharing a lookahead terminal.
func hasReduceReduceConflict(s *State) bool {
	seen := make(map[*grammar.Symbol]*grammar.Production)
	for _, it := range s.itemsSlice() {
		if !it.IsComplete() {
			continue
		}
		if prev, ok := seen[it.Lookahead]; ok && prev != it.Prod {
			return true
		}
		seen[it.Lookahead] = it.Prod
	}
	return false
}
