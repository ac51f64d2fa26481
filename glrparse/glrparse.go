/*
Package glrparse implements the generalized (GLR) runtime: per-generation
reduce-then-shift scheduling over a graph-structured stack (package gss),
packing alternative derivations into a shared packed parse forest (package
sppf), with precedence/associativity disambiguation at pack time.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package glrparse

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kynrai/glr/action"
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/gss"
	"github.com/kynrai/glr/recognize"
	"github.com/kynrai/glr/sppf"
	"github.com/kynrai/glr/table"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.glr")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// ParseError is raised when a generation's frontier dies out (no shifts,
// no accept) before the input is exhausted.
type ParseError struct {
	Position int
	Expected []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: no viable continuation, expected one of %v", e.Position, e.Expected)
}

// AmbiguityError is raised when Parse1 is asked for a single tree but the
// input admits more than one derivation.
type AmbiguityError struct {
	Roots int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous parse: %d distinct derivations", e.Roots)
}

// Parser drives the GLR runtime over a compiled Tables.
type Parser struct {
	G       *grammar.Grammar
	Tables  *table.Tables
	Actions action.Table

	// BuildTree selects the fallback for productions without a registered
	// action during Parse1 evaluation: the default tree-builder when true,
	// plain pass-through of the children values when false.
	BuildTree bool
}

// New constructs a Parser bound to a grammar and its compiled tables, with
// tree building enabled as the fallback action.
func New(g *grammar.Grammar, tables *table.Tables, actions action.Table) *Parser {
	return &Parser{G: g, Tables: tables, Actions: actions, BuildTree: true}
}

// Result is the outcome of a GLR parse: the forest built and every
// accepted root within it (more than one root is possible only in
// pathological grammars that accept via distinct states; the common case
// of ambiguity is multiple packed alternatives under a single root, see
// sppf.Forest.IsAmbiguous).
type Result struct {
	Forest *sppf.Forest
	Roots  []sppf.Handle
	RunID  string // arena generation tag, for debugging/export
}

// matcher lazily recognizes each terminal at one fixed (post-layout)
// position and caches the outcome, so every GSS top of a generation sees
// the exact same matches. Layout is consumed once per generation, never
// per head.
type matcher struct {
	input string
	pos   int
	atEnd bool
	cache map[*grammar.Symbol][]recognize.Match
}

func (m *matcher) at(t *grammar.Symbol) (recognize.Match, bool) {
	if t.IsStop() {
		if m.atEnd {
			return recognize.Match{Terminal: t, NewPos: m.pos}, true
		}
		return recognize.Match{}, false
	}
	got, ok := m.cache[t]
	if !ok {
		got = recognize.At(m.input, m.pos, []*grammar.Symbol{t}, nil)
		m.cache[t] = got
	}
	if len(got) == 0 {
		return recognize.Match{}, false
	}
	return got[0], true
}

// Parse runs the generalized reduce/shift loop over input to completion,
// returning every accepted SPPF root.
//
// GSS tops group into generations by the input position they were created
// at; because the Recognizer may return matches of different lengths for
// different terminals, shifted tops can land at different positions, so
// each iteration processes the earliest pending generation and leaves
// later tops waiting until input reaches them.
func (p *Parser) Parse(input string) (*Result, error) {
	arena := gss.NewArena()
	forest := sppf.New()
	pending := []gss.Handle{arena.Root(0, 0)}
	runID := uuid.NewString()

	var roots []sppf.Handle
	lastPos := 0
	var lastExpected []*grammar.Symbol

	for len(pending) > 0 {
		gen := arena.Pos(pending[0])
		for _, h := range pending[1:] {
			if arena.Pos(h) < gen {
				gen = arena.Pos(h)
			}
		}
		var frontier, rest []gss.Handle
		for _, h := range pending {
			if arena.Pos(h) == gen {
				frontier = append(frontier, h)
			} else {
				rest = append(rest, h)
			}
		}

		base := recognize.Layout(p.G.Layout, input, gen)
		m := &matcher{
			input: input,
			pos:   base,
			atEnd: base >= len(input),
			cache: make(map[*grammar.Symbol][]recognize.Match),
		}

		allTops, accepted := p.saturateReductions(arena, forest, frontier, m, gen)
		roots = append(roots, accepted...)

		shifted, shiftAccepted := p.shiftAll(arena, forest, allTops, m)
		roots = append(roots, shiftAccepted...)

		tracer().Debugf("generation at %d: %d tops in, %d shifted out, %d accepted so far", gen, len(frontier), len(shifted), len(roots))

		pending = append(rest, shifted...)
		lastPos = base
		lastExpected = expectedAcross(p.Tables, arena, allTops)
	}

	if len(roots) == 0 {
		return nil, &ParseError{Position: lastPos, Expected: names(lastExpected)}
	}
	return &Result{Forest: forest, Roots: dedupRoots(roots), RunID: runID}, nil
}

// Parse1 runs Parse and, if the input admits exactly one derivation,
// evaluates it bottom-up with actions (or the default tree-builder),
// returning the single semantic value. If more than one root or any
// ambiguous node is reachable from it, it returns AmbiguityError.
func (p *Parser) Parse1(input string, state interface{}) (interface{}, error) {
	res, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	if len(res.Roots) != 1 {
		return nil, &AmbiguityError{Roots: len(res.Roots)}
	}
	if isAmbiguous(res.Forest, res.Roots[0]) {
		return nil, &AmbiguityError{Roots: countDerivations(res.Forest, res.Roots[0])}
	}
	return p.evaluate(res.Forest, res.Roots[0], state, map[sppf.Handle]interface{}{}), nil
}

func expectedAcross(t *table.Tables, arena *gss.Arena, tops []gss.Handle) []*grammar.Symbol {
	seen := map[*grammar.Symbol]bool{}
	var out []*grammar.Symbol
	for _, h := range tops {
		for _, term := range t.ExpectedTerminals(arena.State(h)) {
			if !seen[term] {
				seen[term] = true
				out = append(out, term)
			}
		}
	}
	return out
}

func names(syms []*grammar.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}

// gotoResult is one GSS top produced by a reduction, flagged fresh when a
// new edge was added (as opposed to re-deriving an edge that already
// existed).
type gotoResult struct {
	top   gss.Handle
	fresh bool
}

// saturateReductions performs every reduction reachable from frontier,
// cascading through freshly produced tops, until no new top or edge is
// produced. A reduction into an already-processed top that
// adds a new incoming edge re-enqueues that top, since paths through the
// new edge have not been explored yet. Returns every GSS top alive at this
// generation (frontier plus every goto-created top) and any Accept roots
// discovered along the way.
func (p *Parser) saturateReductions(arena *gss.Arena, forest *sppf.Forest, frontier []gss.Handle, m *matcher, gen int) ([]gss.Handle, []sppf.Handle) {
	seen := map[gss.Handle]bool{}
	var all []gss.Handle
	worklist := append([]gss.Handle{}, frontier...)
	for _, h := range frontier {
		seen[h] = true
		all = append(all, h)
	}

	var accepted []sppf.Handle
	for len(worklist) > 0 {
		h := worklist[0]
		worklist = worklist[1:]
		state := arena.State(h)

		for _, term := range p.Tables.ExpectedTerminals(state) {
			if _, ok := m.at(term); !ok {
				continue
			}
			for _, act := range p.Tables.Actions(state, term) {
				if act.Kind != table.Reduce {
					continue
				}
				for _, r := range p.reduceAt(arena, forest, h, act.Prod, gen) {
					if !seen[r.top] {
						seen[r.top] = true
						all = append(all, r.top)
						worklist = append(worklist, r.top)
					} else if r.fresh {
						worklist = append(worklist, r.top)
					}
					// A freshly reached state may itself carry an Accept
					// action for STOP (only possible once the augmented
					// production's goto has fired); surface it here too.
					accepted = append(accepted, p.acceptRootsAt(arena, r.top)...)
				}
			}
		}
	}
	return all, accepted
}

// reduceAt performs one reduction of prod from top h: for every path of
// length |rhs| backward through the GSS, it builds or shares the SPPF
// non-terminal node for prod.LHS and creates (or shares) a new GSS top at
// GOTO[origin, prod.LHS].
func (p *Parser) reduceAt(arena *gss.Arena, forest *sppf.Forest, h gss.Handle, prod *grammar.Production, gen int) []gotoResult {
	var out []gotoResult
	for _, path := range arena.Paths(h, len(prod.RHS)) {
		children := make([]sppf.Handle, len(path.Labels))
		for i, lbl := range path.Labels {
			children[i] = lbl.(sppf.Handle)
		}
		start := arena.Pos(path.Origin)
		nt := forest.NonTerminal(prod.LHS, start, gen)
		forest.AddPacked(nt, prod, children)

		originState := arena.State(path.Origin)
		target := p.Tables.Goto(originState, prod.LHS)
		if target < 0 {
			panic(fmt.Sprintf("glrparse: invariant violated: no GOTO(%d, %s)", originState, prod.LHS.Name))
		}
		newTop, existed := arena.PushEdge(path.Origin, target, gen, gss.Label(nt))
		out = append(out, gotoResult{top: newTop, fresh: !existed})
		tracer().Debugf("reduce %s over [%d,%d) -> state %d", prod, start, gen, target)
	}
	return out
}

// shiftAll performs every viable shift from the tops saturated this
// generation, for every recognized match, sharing target GSS nodes the
// same way reductions do.
func (p *Parser) shiftAll(arena *gss.Arena, forest *sppf.Forest, tops []gss.Handle, m *matcher) ([]gss.Handle, []sppf.Handle) {
	seen := map[gss.Handle]bool{}
	var next []gss.Handle
	var accepted []sppf.Handle
	for _, h := range tops {
		state := arena.State(h)
		for _, term := range p.Tables.ExpectedTerminals(state) {
			match, ok := m.at(term)
			if !ok {
				continue
			}
			for _, act := range p.Tables.Actions(state, term) {
				if act.Kind != table.Shift {
					continue
				}
				leaf := forest.Leaf(match.Terminal, match.Lexeme, match.NewPos-len(match.Lexeme), match.NewPos)
				newTop, existed := arena.PushEdge(h, act.State, match.NewPos, gss.Label(leaf))
				if !existed && !seen[newTop] {
					seen[newTop] = true
					next = append(next, newTop)
				}
				accepted = append(accepted, p.acceptRootsAt(arena, newTop)...)
				tracer().Debugf("shift %q (state %d -> %d)", match.Lexeme, state, act.State)
			}
		}
	}
	return next, accepted
}

// acceptRootsAt checks whether h's state carries an Accept action for
// STOP; if so it walks back two edges (the STOP shift, then the start
// symbol's goto) to recover the SPPF node for the user's start symbol.
func (p *Parser) acceptRootsAt(arena *gss.Arena, h gss.Handle) []sppf.Handle {
	state := arena.State(h)
	var hasAccept bool
	for _, act := range p.Tables.Actions(state, p.G.Stop) {
		if act.Kind == table.Accept {
			hasAccept = true
		}
	}
	if !hasAccept {
		return nil
	}
	var roots []sppf.Handle
	for _, path := range arena.Paths(h, 2) {
		if len(path.Labels) != 2 {
			continue
		}
		roots = append(roots, path.Labels[0].(sppf.Handle))
	}
	return roots
}

func dedupRoots(roots []sppf.Handle) []sppf.Handle {
	seen := map[sppf.Handle]bool{}
	var out []sppf.Handle
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func isAmbiguous(forest *sppf.Forest, h sppf.Handle) bool {
	n := forest.At(h)
	if n.Kind == sppf.TerminalNode {
		return false
	}
	if len(n.Packed) > 1 {
		return true
	}
	for _, pk := range n.Packed {
		for _, c := range pk.Children {
			if isAmbiguous(forest, c) {
				return true
			}
		}
	}
	return false
}

func countDerivations(forest *sppf.Forest, h sppf.Handle) int {
	n := forest.At(h)
	if n.Kind == sppf.TerminalNode {
		return 1
	}
	total := 0
	for _, pk := range n.Packed {
		prod := 1
		for _, c := range pk.Children {
			prod *= countDerivations(forest, c)
		}
		total += prod
	}
	if total == 0 {
		total = 1
	}
	return total
}

// evaluate walks a (non-ambiguous) SPPF node bottom-up, dispatching
// production actions (or the default tree-builder) the same way the LR
// runtime does.
func (p *Parser) evaluate(forest *sppf.Forest, h sppf.Handle, state interface{}, memo map[sppf.Handle]interface{}) interface{} {
	if v, ok := memo[h]; ok {
		return v
	}
	n := forest.At(h)
	var v interface{}
	switch n.Kind {
	case sppf.TerminalNode:
		v = leafValue(n)
	default:
		pk := n.Packed[0]
		children := make([]interface{}, len(pk.Children))
		for i, c := range pk.Children {
			children[i] = p.evaluate(forest, c, state, memo)
		}
		altIndex := action.AltIndex(p.G, pk.Prod)
		if fn, ok := action.Dispatch(p.Actions, pk.Prod, altIndex); ok {
			ctx := &action.Context{
				Span:  spanOf(n),
				Prod:  pk.Prod,
				State: state,
			}
			v = fn(ctx, children)
		} else if p.BuildTree {
			v = buildDefaultNode(pk, children, n)
		} else if len(children) == 1 {
			v = children[0]
		} else {
			v = children
		}
	}
	memo[h] = v
	return v
}
