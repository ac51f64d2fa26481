package grammar

import (
	"fmt"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key "glr.grammar".
func tracer() tracing.Trace {
	t := tracing.Select("glr.grammar")
	if t == nil {
		return gtrace.SyntaxTracer
	}
	return t
}

// GrammarError reports a structural problem detected while building a
// Grammar from a structured description.
type GrammarError struct {
	Reason string
}

func (e *GrammarError) Error() string { return "grammar error: " + e.Reason }

func errGrammar(format string, args ...interface{}) error {
	return &GrammarError{Reason: fmt.Sprintf(format, args...)}
}

// Diagnostic is a non-fatal note surfaced alongside a successfully built
// Grammar or compiled table set (e.g. an LALR merge that introduced a
// reduce/reduce conflict).
type Diagnostic struct {
	Message string
}

// RHS is one alternative right-hand side for a non-terminal, with an
// optional precedence/associativity override. A nil or empty
// Symbols slice denotes an ε-production.
type RHS struct {
	Symbols  []string
	Priority int // 0 means "derive from rightmost terminal"
	Assoc    Assoc
}

// TerminalSpec describes how a terminal recognizes input.
type TerminalSpec struct {
	Kind     string // "regexp" | "string" | "custom"
	Regexp   string
	Literal  string
	Custom   CustomRecognizer
	Priority int
	Prefer   bool // Deprecated: has no effect
}

// NonTerminalDef is one entry of an ordered productions description: a
// non-terminal name together with its alternative right-hand sides, in
// declaration order.
type NonTerminalDef struct {
	Name string
	RHS  []RHS
}

// TerminalDef is one entry of an ordered terminals description: a terminal
// name together with its recognizer spec, in declaration order. Declaration
// order matters for the Recognizer's tie-break rule.
type TerminalDef struct {
	Name string
	Spec TerminalSpec
}

// Grammar is the canonical, frozen in-memory grammar: symbols, productions
// and precedence. Build one with FromStruct; do not mutate afterwards.
type Grammar struct {
	Name string

	Productions []*Production // Productions[0] is always AUGMENTED_START -> start STOP
	Terminals   []*Symbol      // declaration order, including EMPTY and STOP
	NonTerms    []*Symbol      // declaration order, including AUGMENTED_START

	Start          *Symbol // the user's declared start non-terminal
	AugmentedStart *Symbol // S'

	Empty *Symbol // ε sentinel
	Stop  *Symbol // $ / end-of-input sentinel

	Layout *Grammar // optional sub-grammar for skipping whitespace/comments

	byName map[string]*Symbol
	frozen bool
}

// Symbol looks up a symbol by name.
func (g *Grammar) Symbol(name string) (*Symbol, bool) {
	s, ok := g.byName[name]
	return s, ok
}

// NumSymbols returns the total number of distinct symbols in the grammar,
// including EMPTY, STOP and AUGMENTED_START.
func (g *Grammar) NumSymbols() int { return len(g.Terminals) + len(g.NonTerms) }

// Production returns the production with the given index.
func (g *Grammar) Production(index int) *Production { return g.Productions[index] }

// EachSymbol calls fn for every terminal then every non-terminal.
func (g *Grammar) EachSymbol(fn func(*Symbol)) {
	for _, t := range g.Terminals {
		fn(t)
	}
	for _, n := range g.NonTerms {
		fn(n)
	}
}

// builder accumulates symbols/productions while validating references.
type builder struct {
	g           *Grammar
	diagnostics []Diagnostic
}

// FromStruct builds a frozen Grammar from a structured description: an
// ordered list of non-terminal definitions, an ordered list of terminal
// definitions, and a start symbol name. The
// augmentation production `AUGMENTED_START -> start STOP` is synthesized
// last and reassigned index 0.
func FromStruct(name string, productions []NonTerminalDef, terminals []TerminalDef, start string, layout *Grammar) (*Grammar, []Diagnostic, error) {
	b := &builder{g: &Grammar{Name: name, byName: make(map[string]*Symbol), Layout: layout}}

	startDeclared := false
	for _, nt := range productions {
		if nt.Name == start {
			startDeclared = true
		}
	}
	if !startDeclared {
		return nil, nil, errGrammar("start symbol %q is not among declared non-terminals", start)
	}

	// Sentinels come first so their indices are stable and low.
	empty := b.declare(&Symbol{Name: "EMPTY", Kind: Terminal, special: emptySpecial})
	stop := b.declare(&Symbol{Name: "STOP", Kind: Terminal, special: stopSpecial})
	b.g.Empty, b.g.Stop = empty, stop

	for _, nt := range productions {
		if _, exists := b.g.byName[nt.Name]; exists {
			return nil, nil, errGrammar("duplicate symbol name %q", nt.Name)
		}
		b.declare(&Symbol{Name: nt.Name, Kind: NonTerminal})
	}

	seenTerm := map[string]bool{}
	for _, td := range terminals {
		if seenTerm[td.Name] {
			return nil, nil, errGrammar("duplicate terminal name %q", td.Name)
		}
		seenTerm[td.Name] = true
		if _, exists := b.g.byName[td.Name]; exists {
			return nil, nil, errGrammar("terminal %q collides with an already-declared symbol", td.Name)
		}
		spec := td.Spec
		sym := &Symbol{Name: td.Name, Kind: Terminal, Priority: spec.Priority, Prefer: spec.Prefer}
		switch spec.Kind {
		case "regexp":
			sym.RecKind = RegexKind
			sym.Pattern = spec.Regexp
		case "string":
			sym.RecKind = StringKind
			sym.Pattern = spec.Literal
		case "custom":
			sym.RecKind = CustomKind
			sym.Custom = spec.Custom
		default:
			return nil, nil, errGrammar("terminal %q: unknown recognizer kind %q", td.Name, spec.Kind)
		}
		b.declare(sym)
	}

	// Now build productions, in declaration order, validating references.
	prodIndex := 1 // index 0 is reserved for the augmentation production
	for _, nt := range productions {
		lhs := b.g.byName[nt.Name]
		for _, rhs := range nt.RHS {
			symNames := rhs.Symbols
			if len(symNames) == 1 && symNames[0] == "EMPTY" {
				// A lone EMPTY denotes ε, same as an empty alternative.
				symNames = nil
			}
			resolved := make([]*Symbol, 0, len(symNames))
			for _, sname := range symNames {
				sym, ok := b.g.byName[sname]
				if !ok {
					return nil, nil, errGrammar("production for %q references undefined symbol %q", nt.Name, sname)
				}
				resolved = append(resolved, sym)
			}
			if len(rhs.Symbols) > 1 {
				for _, sname := range rhs.Symbols {
					if sname == "EMPTY" {
						return nil, nil, errGrammar("production for %q mixes EMPTY with other symbols", nt.Name)
					}
				}
			}
			p := &Production{Index: prodIndex, LHS: lhs, RHS: resolved, Priority: rhs.Priority, Assoc: rhs.Assoc}
			b.g.Productions = append(b.g.Productions, p)
			prodIndex++
		}
	}

	// Synthesize the augmentation production last, then reassign it to
	// index 0.
	startSym := b.g.byName[start]
	b.g.Start = startSym
	augStart := b.declare(&Symbol{Name: "S'", Kind: NonTerminal})
	b.g.AugmentedStart = augStart
	augProd := &Production{Index: 0, LHS: augStart, RHS: []*Symbol{startSym, stop}, Priority: DefaultPriority}
	b.g.Productions = append([]*Production{augProd}, b.g.Productions...)
	for i, p := range b.g.Productions {
		p.Index = i
	}

	b.g.frozen = true
	tracer().Debugf("built grammar %q: %d symbols, %d productions", name, b.g.NumSymbols(), len(b.g.Productions))
	return b.g, b.diagnostics, nil
}

func (b *builder) declare(sym *Symbol) *Symbol {
	sym.Index = len(b.g.Terminals) + len(b.g.NonTerms)
	if sym.Kind == Terminal {
		b.g.Terminals = append(b.g.Terminals, sym)
	} else {
		b.g.NonTerms = append(b.g.NonTerms, sym)
	}
	b.g.byName[sym.Name] = sym
	return sym
}
