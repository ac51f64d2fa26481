/*
Package sppf implements the shared packed parse forest the GLR runtime
builds: terminal leaves, non-terminal nodes, and the packed alternatives
representing competing derivations of the same span.

As with package gss, nodes live in an arena and are addressed by dense
integer handles rather than pointers.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package sppf

import (
	"github.com/cnf/structhash"
	"github.com/kynrai/glr/grammar"
)

// Handle addresses a node within a Forest.
type Handle int

// NoHandle is the zero-value sentinel for "no node".
const NoHandle Handle = -1

// Kind distinguishes a terminal leaf from a non-terminal node.
type Kind int

const (
	TerminalNode Kind = iota
	NonTerminalNode
)

// Span is the half-open [Start, End) byte range a node covers.
type Span struct {
	Start, End int
}

// Packed is one packed alternative under a non-terminal node: the
// production it derives from and its children, in rhs order.
type Packed struct {
	Prod     *grammar.Production
	Children []Handle
}

type node struct {
	kind   Kind
	symbol *grammar.Symbol
	span   Span
	lexeme string // TerminalNode only

	packed []Packed // NonTerminalNode only; >1 entries means ambiguous
}

// Forest owns every SPPF node built during one parse call.
type Forest struct {
	nodes      []node
	terminalBy map[termKey]Handle
	ntBy       map[ntKey]Handle
}

type termKey struct {
	sym        *grammar.Symbol
	start, end int
}

type ntKey struct {
	sym        *grammar.Symbol
	start, end int
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{
		terminalBy: make(map[termKey]Handle),
		ntBy:       make(map[ntKey]Handle),
	}
}

// Leaf returns (creating if needed) the terminal node for a recognized
// token at [start,end).
func (f *Forest) Leaf(term *grammar.Symbol, lexeme string, start, end int) Handle {
	k := termKey{term, start, end}
	if h, ok := f.terminalBy[k]; ok {
		return h
	}
	h := Handle(len(f.nodes))
	f.nodes = append(f.nodes, node{kind: TerminalNode, symbol: term, lexeme: lexeme, span: Span{start, end}})
	f.terminalBy[k] = h
	return h
}

// NonTerminal returns (creating if needed) the non-terminal node for sym
// over [start,end). Callers add packed alternatives to it via AddPacked.
func (f *Forest) NonTerminal(sym *grammar.Symbol, start, end int) Handle {
	k := ntKey{sym, start, end}
	if h, ok := f.ntBy[k]; ok {
		return h
	}
	h := Handle(len(f.nodes))
	f.nodes = append(f.nodes, node{kind: NonTerminalNode, symbol: sym, span: Span{start, end}})
	f.ntBy[k] = h
	return h
}

// Node exposes a read-only view of a forest node.
type Node struct {
	Kind     Kind
	Symbol   *grammar.Symbol
	Span     Span
	Lexeme   string
	Packed   []Packed
}

// At returns the node stored at h.
func (f *Forest) At(h Handle) Node {
	n := f.nodes[h]
	return Node{Kind: n.kind, Symbol: n.symbol, Span: n.span, Lexeme: n.lexeme, Packed: n.packed}
}

// IsAmbiguous reports whether the node at h carries more than one packed
// alternative.
func (f *Forest) IsAmbiguous(h Handle) bool { return len(f.nodes[h].packed) > 1 }

// signature produces a stable structural key for a candidate packed
// alternative, used to de-duplicate identical derivations reached via
// different GSS paths.
func signature(prod *grammar.Production, children []Handle) string {
	h, err := structhash.Hash(struct {
		P int
		C []Handle
	}{P: prod.Index, C: children}, 1)
	if err != nil {
		// structhash only fails on unhashable types; P/C are always
		// hashable, so this is unreachable in practice.
		panic("sppf: invariant violated: structural hash failed: " + err.Error())
	}
	return h
}

// AddPacked adds a packed alternative (prod, children) under the
// non-terminal node nt, applying the precedence/associativity
// disambiguation rule when an alternative with the same span
// already exists. It reports whether the alternative was kept (as opposed
// to being pruned outright in favor of a strictly higher-priority rival).
func (f *Forest) AddPacked(nt Handle, prod *grammar.Production, children []Handle) bool {
	n := &f.nodes[nt]
	sig := signature(prod, children)
	for _, existing := range n.packed {
		if signature(existing.Prod, existing.Children) == sig {
			return false // identical derivation already packed
		}
	}

	candidate := Packed{Prod: prod, Children: children}
	if len(n.packed) == 0 {
		n.packed = append(n.packed, candidate)
		return true
	}

	kept := n.packed[:0:0]
	added := false
	candidateSurvives := true
	for _, existing := range n.packed {
		switch f.disambiguate(existing, candidate) {
		case keepExisting:
			kept = append(kept, existing)
			candidateSurvives = false
		case keepCandidate:
			// drop existing, candidate added once below
		case keepBoth:
			kept = append(kept, existing)
		}
	}
	if candidateSurvives {
		kept = append(kept, candidate)
		added = true
	}
	n.packed = kept
	return added
}

type disambiguation int

const (
	keepBoth disambiguation = iota
	keepExisting
	keepCandidate
)

// disambiguate arbitrates between two packings of the
// same span: a strictly higher EffectivePriority at the root wins
// outright; equal priority with a shared, decidable associativity keeps
// only the shape consistent with it; otherwise both are genuinely
// ambiguous and are kept.
func (f *Forest) disambiguate(existing, candidate Packed) disambiguation {
	pe, pc := existing.Prod.EffectivePriority(), candidate.Prod.EffectivePriority()
	if pe > pc {
		return keepExisting
	}
	if pc > pe {
		return keepCandidate
	}
	if existing.Prod.LHS != candidate.Prod.LHS {
		return keepBoth
	}
	assoc := existing.Prod.EffectiveAssoc()
	if assoc == grammar.NoAssoc || candidate.Prod.EffectiveAssoc() != assoc {
		return keepBoth
	}
	if len(existing.Children) == 0 || len(existing.Children) != len(candidate.Children) {
		return keepBoth
	}
	// Same-priority packings of one operator chain differ only in where
	// the chain splits: a left-leaning tree has the wider first child, a
	// right-leaning one the wider last child.
	var we, wc int
	switch assoc {
	case grammar.LeftAssoc:
		we, wc = f.width(existing.Children[0]), f.width(candidate.Children[0])
	case grammar.RightAssoc:
		we = f.width(existing.Children[len(existing.Children)-1])
		wc = f.width(candidate.Children[len(candidate.Children)-1])
	}
	if we > wc {
		return keepExisting
	}
	if wc > we {
		return keepCandidate
	}
	return keepBoth
}

func (f *Forest) width(h Handle) int {
	n := f.nodes[h]
	return n.span.End - n.span.Start
}
