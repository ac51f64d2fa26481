package glr

import (
	"fmt"

	"github.com/kynrai/glr/action"
	"github.com/kynrai/glr/firstset"
	"github.com/kynrai/glr/glrparse"
	"github.com/kynrai/glr/grammar"
	"github.com/kynrai/glr/itemgraph"
	"github.com/kynrai/glr/lrparse"
	"github.com/kynrai/glr/table"
	"github.com/kynrai/glr/tree"
)

// Re-exported so callers need only import this root package for the
// common path.
type (
	RHS              = grammar.RHS
	TerminalSpec     = grammar.TerminalSpec
	NonTerminalDef   = grammar.NonTerminalDef
	TerminalDef      = grammar.TerminalDef
	Grammar          = grammar.Grammar
	Diagnostic       = grammar.Diagnostic
	CustomRecognizer = grammar.CustomRecognizer
	Actions          = action.Table
	ActionFunc       = action.Func
	ActionContext    = action.Context
	Tree             = tree.Node
	GrammarError     = grammar.GrammarError
	LRConflictError  = table.LRConflictError
	ParseErrorLR     = lrparse.ParseError
	ParseErrorGLR    = glrparse.ParseError
	AmbiguityError   = glrparse.AmbiguityError
)

// ParserType selects the deterministic or generalized runtime.
type ParserType int

const (
	LR ParserType = iota
	GLR
)

// TableType selects whether ItemGraph keeps the full LR(1) state
// collection or merges to LALR(1) cores.
type TableType int

const (
	LALR TableType = iota
	LR1
)

// Options configures FromStruct. This struct is the sole configuration surface; there are
// no environment variables or config files.
type Options struct {
	ParserType ParserType
	TableType  TableType
	Layout     *grammar.Grammar
	// BuildTree keeps the default tree-building action for productions
	// without a registered action. FromStruct forces it on when Actions is
	// nil, so tree building is the default for action-less grammars; with
	// Actions present and BuildTree left false, a successful parse whose
	// start production has a registered action still returns that action's
	// value unchanged.
	BuildTree bool
	Actions   action.Table
}

// Compiled is a frozen Grammar plus its compiled ACTION/GOTO tables and
// the runtime configuration used to build them, ready to Parse against
// any number of inputs.
type Compiled struct {
	Grammar     *grammar.Grammar
	First       *firstset.Sets
	Graph       *itemgraph.Graph
	Tables      *table.Tables
	Options     Options
	Diagnostics []Diagnostic
}

// FromStruct builds a frozen Grammar from a structured description and
// compiles it into ACTION/GOTO tables: grammar construction, FIRST-set
// computation, item-graph generation and table population in one call.
func FromStruct(name string, productions []NonTerminalDef, terminals []TerminalDef, start string, opts Options) (*Compiled, error) {
	if opts.Actions == nil {
		opts.BuildTree = true
	}

	g, diags, err := grammar.FromStruct(name, productions, terminals, start, opts.Layout)
	if err != nil {
		return nil, err
	}

	first := firstset.Compute(g)

	lalr := opts.TableType == LALR
	graph, graphDiags, err := itemgraph.Build(g, first, lalr)
	if err != nil {
		return nil, err
	}
	diags = append(diags, graphDiags...)

	tbl, err := table.Build(g, first, graph, opts.ParserType == GLR)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Grammar:     g,
		First:       first,
		Graph:       graph,
		Tables:      tbl,
		Options:     opts,
		Diagnostics: diags,
	}, nil
}

// Parse runs c's runtime (LR or GLR, per c.Options.ParserType) against
// input.
//
//   - LR mode returns a single semantic value (the default tree, or
//     whatever the registered actions produced).
//   - GLR mode returns a single semantic value too when the input is
//     unambiguous; if more than one derivation survives, it returns
//     *glrparse.AmbiguityError rather than silently picking one.
func (c *Compiled) Parse(input string, userState interface{}) (interface{}, error) {
	switch c.Options.ParserType {
	case LR:
		p := lrparse.New(c.Grammar, c.Tables, c.Options.Actions)
		p.State = userState
		p.BuildTree = c.Options.BuildTree
		return p.Parse(input)
	case GLR:
		p := glrparse.New(c.Grammar, c.Tables, c.Options.Actions)
		p.BuildTree = c.Options.BuildTree
		return p.Parse1(input, userState)
	default:
		return nil, fmt.Errorf("glr: unknown parser type %v", c.Options.ParserType)
	}
}

// ParseForest runs the GLR runtime and returns every accepted derivation
// without collapsing ambiguity, for callers that want to inspect it
// themselves.
func (c *Compiled) ParseForest(input string) (*glrparse.Result, error) {
	p := glrparse.New(c.Grammar, c.Tables, c.Options.Actions)
	return p.Parse(input)
}
