/*
Package lrparse implements the deterministic LR runtime: the shift/reduce
loop that drives a compiled Tables against an input buffer via a single
Recognizer call per step.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package lrparse

import (
	"fmt"

	"github.com/kynrai/glr/action"
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/recognize"
	"github.com/kynrai/glr/table"
	"github.com/kynrai/glr/tree"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	t := tracing.Select("glr.lr")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// ParseError is raised when, at the current input position, no Recognizer
// match corresponds to any action the current state defines.
type ParseError struct {
	Position int
	Line     int
	Column   int
	Expected []string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d (offset %d): expected one of %v, found %q",
		e.Line, e.Column, e.Position, e.Expected, e.Found)
}

// stackItem is one entry of the deterministic parse stack: a state plus
// the semantic value and span accumulated under it.
type stackItem struct {
	state int
	value interface{}
	span  tree.Span
}

// Parser drives the deterministic shift/reduce loop over a compiled
// Tables.
type Parser struct {
	G       *grammar.Grammar
	Tables  *table.Tables
	Actions action.Table
	State   interface{} // opaque user state threaded into action.Context

	// BuildTree selects the fallback for productions without a registered
	// action: the default tree-builder when true, plain pass-through of
	// the children values when false.
	BuildTree bool
}

// New constructs a Parser bound to a grammar and its compiled tables, with
// tree building enabled as the fallback action.
func New(g *grammar.Grammar, tables *table.Tables, actions action.Table) *Parser {
	return &Parser{G: g, Tables: tables, Actions: actions, BuildTree: true}
}

// Parse runs the deterministic LR loop over input, returning the semantic
// value of the start symbol once the Accept action is reached (the
// augmented start production itself is never reduced).
func (p *Parser) Parse(input string) (interface{}, error) {
	stack := []stackItem{{state: 0}}
	pos := 0

	for {
		top := stack[len(stack)-1]
		expected := p.Tables.ExpectedTerminals(top.state)

		matches := recognize.At(input, pos, expected, p.G.Layout)
		match, hasMatch := recognize.Best(matches)

		if !hasMatch {
			// STOP is never matched by the Recognizer; once input is
			// exhausted, drive it through by hand. Reaching Accept usually
			// takes a cascade of reductions under STOP lookahead plus one
			// Shift(STOP) hop before the item `S' -> S STOP ., STOP` is
			// complete.
			base := recognize.Layout(p.G.Layout, input, pos)
			if base < len(input) {
				return nil, p.parseError(input, base, expected)
			}
			for {
				top = stack[len(stack)-1]
				acts := p.Tables.Actions(top.state, p.G.Stop)
				if len(acts) != 1 {
					return nil, p.parseError(input, base, expected)
				}
				switch acts[0].Kind {
				case table.Accept:
					return top.value, nil
				case table.Shift:
					stack = append(stack, stackItem{state: acts[0].State, value: top.value, span: tree.Span{Start: base, End: base}})
				case table.Reduce:
					stack = p.reduce(stack, acts[0].Prod)
				default:
					panic(fmt.Sprintf("lrparse: invariant violated: unknown action kind %v", acts[0].Kind))
				}
			}
		}

		acts := p.Tables.Actions(top.state, match.Terminal)
		if len(acts) == 0 {
			return nil, p.parseError(input, pos, expected)
		}
		act := acts[0]

		switch act.Kind {
		case table.Shift:
			// The match's span starts where the lexeme does, behind any
			// layout the Recognizer skipped.
			leaf := tree.Leaf(match.Terminal, match.Lexeme, tree.Span{Start: match.NewPos - len(match.Lexeme), End: match.NewPos})
			stack = append(stack, stackItem{state: act.State, value: leaf, span: leaf.Span})
			pos = match.NewPos
			tracer().Debugf("shift %q -> state %d", match.Lexeme, act.State)

		case table.Reduce:
			stack = p.reduce(stack, act.Prod)

		case table.Accept:
			return stack[len(stack)-1].value, nil

		default:
			panic(fmt.Sprintf("lrparse: invariant violated: unknown action kind %v", act.Kind))
		}
	}
}

// reduce pops len(prod.RHS) stack entries, applies the production's
// semantic action (or the default tree-builder), and pushes the result
// under the state reached via GOTO[top, prod.LHS].
func (p *Parser) reduce(stack []stackItem, prod *grammar.Production) []stackItem {
	n := len(prod.RHS)
	popped := stack[len(stack)-n:]
	stack = stack[:len(stack)-n]

	children := make([]*tree.Node, n)
	values := make([]interface{}, n)
	for i, item := range popped {
		values[i] = item.value
		if node, ok := item.value.(*tree.Node); ok {
			children[i] = node
		}
	}

	var span tree.Span
	if n > 0 {
		span = tree.Span{Start: popped[0].span.Start, End: popped[n-1].span.End}
	} else if len(stack) > 0 {
		span = tree.Span{Start: stack[len(stack)-1].span.End, End: stack[len(stack)-1].span.End}
	}

	var value interface{}
	altIndex := action.AltIndex(p.G, prod)
	if fn, ok := action.Dispatch(p.Actions, prod, altIndex); ok {
		ctx := &action.Context{Span: span, Prod: prod, State: p.State}
		value = fn(ctx, values)
	} else if p.BuildTree {
		value = tree.Reduce(prod, children)
	} else if len(values) == 1 {
		value = values[0]
	} else {
		value = values
	}

	top := stack[len(stack)-1]
	next := p.Tables.Goto(top.state, prod.LHS)
	if next < 0 {
		panic(fmt.Sprintf("lrparse: invariant violated: no GOTO(%d, %s)", top.state, prod.LHS.Name))
	}
	tracer().Debugf("reduce %s -> state %d", prod, next)
	return append(stack, stackItem{state: next, value: value, span: span})
}

func (p *Parser) parseError(input string, pos int, expected []*grammar.Symbol) *ParseError {
	line, col := lineCol(input, pos)
	names := make([]string, 0, len(expected))
	for _, t := range expected {
		names = append(names, t.Name)
	}
	found := input[pos:]
	if len(found) > 24 {
		found = found[:24] + "…"
	}
	return &ParseError{Position: pos, Line: line, Column: col, Expected: names, Found: found}
}

func lineCol(input string, pos int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < pos && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}
