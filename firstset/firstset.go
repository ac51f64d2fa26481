/*
Package firstset computes nullability and FIRST sets over a frozen grammar
by fixed-point iteration.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package firstset

import (
	"github.com/kynrai/glr/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.firstset")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// entry is the FIRST-set under construction for one non-terminal: a set of
// terminals plus a nullability flag.
type entry struct {
	terms  map[*grammar.Symbol]bool
	nullbl bool
}

func newEntry() *entry { return &entry{terms: make(map[*grammar.Symbol]bool)} }

func (e *entry) add(sym *grammar.Symbol) bool {
	if e.terms[sym] {
		return false
	}
	e.terms[sym] = true
	return true
}

func (e *entry) addEmpty() bool {
	if e.nullbl {
		return false
	}
	e.nullbl = true
	return true
}

func (e *entry) mergeFrom(other *entry) bool {
	changed := false
	for t := range other.terms {
		if e.add(t) {
			changed = true
		}
	}
	return changed
}

// Sets holds the nullability and FIRST information for every non-terminal
// of a Grammar.
type Sets struct {
	g    *grammar.Grammar
	byNT map[*grammar.Symbol]*entry
}

// Compute runs the fixed-point computation of nullable(A) and FIRST(A) for
// every non-terminal A in g.
func Compute(g *grammar.Grammar) *Sets {
	s := &Sets{g: g, byNT: make(map[*grammar.Symbol]*entry)}
	for _, nt := range g.NonTerms {
		s.byNT[nt] = newEntry()
	}
	for {
		more := false
		for _, p := range g.Productions {
			e := s.byNT[p.LHS]
			if s.propagate(e, p.RHS) {
				more = true
			}
		}
		if !more {
			break
		}
	}
	tracer().Debugf("computed FIRST sets for %d non-terminals", len(s.byNT))
	return s
}

// propagate folds FIRST(rhs) into acc, following the standard left-to-right
// rule: accumulate each symbol's FIRST set until a non-nullable symbol is
// reached; if the whole sequence is nullable, acc becomes nullable too.
func (s *Sets) propagate(acc *entry, rhs []*grammar.Symbol) bool {
	if len(rhs) == 0 {
		return acc.addEmpty()
	}
	changed := false
	for _, sym := range rhs {
		if sym.IsTerminal() {
			if sym.IsEmpty() {
				// ε contributes nothing to FIRST but keeps the sequence
				// nullable so far.
				continue
			}
			if acc.add(sym) {
				changed = true
			}
			return changed
		}
		e := s.byNT[sym]
		if acc.mergeFrom(e) {
			changed = true
		}
		if !e.nullbl {
			return changed
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed
}

// Nullable reports whether sym can derive ε. Terminals are never nullable
// except for the EMPTY sentinel itself.
func (s *Sets) Nullable(sym *grammar.Symbol) bool {
	if sym.IsTerminal() {
		return sym.IsEmpty()
	}
	e, ok := s.byNT[sym]
	return ok && e.nullbl
}

// First returns FIRST(sym) as a slice of terminals (never including EMPTY
// itself; nullability is queried separately via Nullable).
func (s *Sets) First(sym *grammar.Symbol) []*grammar.Symbol {
	if sym.IsTerminal() {
		if sym.IsEmpty() {
			return nil
		}
		return []*grammar.Symbol{sym}
	}
	e, ok := s.byNT[sym]
	if !ok {
		return nil
	}
	out := make([]*grammar.Symbol, 0, len(e.terms))
	for t := range e.terms {
		out = append(out, t)
	}
	return out
}

// FirstOfSequence computes FIRST(alpha . lookahead): FIRST of each symbol of
// alpha left to right, stopping at the first non-nullable symbol; if every
// symbol of alpha is nullable, lookahead's FIRST set is folded in too. This
// is the rule the item-graph closure step uses to pick new item lookaheads.
func (s *Sets) FirstOfSequence(alpha []*grammar.Symbol, lookahead *grammar.Symbol) []*grammar.Symbol {
	seen := make(map[*grammar.Symbol]bool)
	var out []*grammar.Symbol
	addAll := func(terms []*grammar.Symbol) {
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	for _, sym := range alpha {
		addAll(s.First(sym))
		if !s.Nullable(sym) {
			return out
		}
	}
	addAll(s.First(lookahead))
	return out
}
