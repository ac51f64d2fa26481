/*
Package grammar implements the canonical in-memory representation of a
context-free grammar: symbols, productions and precedence, built from a
structured description and frozen before analysis.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package grammar

import (
	"fmt"
	"regexp"
	"sync"
)

// Kind distinguishes a terminal symbol from a non-terminal one.
type Kind int

const (
	NonTerminal Kind = iota
	Terminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "non-terminal"
}

// Assoc is the associativity declared for a production, used to break
// shift/reduce ties of equal priority.
type Assoc int

const (
	// NoAssoc leaves a same-priority shift/reduce conflict unresolved.
	NoAssoc Assoc = iota
	LeftAssoc
	RightAssoc
)

func (a Assoc) String() string {
	switch a {
	case LeftAssoc:
		return "left"
	case RightAssoc:
		return "right"
	default:
		return "none"
	}
}

// RecKind selects how a Terminal recognizes input.
type RecKind int

const (
	// RegexKind matches input by a regular expression anchored at the current
	// position, using Go's leftmost-first semantics: among alternatives the
	// first one that matches is taken, not necessarily the longest.
	RegexKind RecKind = iota
	// StringKind matches input by literal prefix equality.
	StringKind
	// CustomKind delegates matching to an opaque recognizer function.
	CustomKind
)

// CustomRecognizer is the signature an application supplies for a "custom"
// terminal. It receives the full input and a byte offset and returns the
// matched lexeme and the position just behind it, or ok=false for no match.
type CustomRecognizer func(input string, pos int) (lexeme string, newPos int, ok bool)

// DefaultPriority is the priority a production receives when none is given
// explicitly and its rightmost terminal carries none either.
const DefaultPriority = 10

// Symbol is either a Terminal or a NonTerminal, identified within a Grammar
// by a dense zero-based Index.
type Symbol struct {
	Index int
	Name  string
	Kind  Kind

	// Terminal-only fields.
	RecKind    RecKind
	Pattern    string // regexp source or literal string, per RecKind
	Custom     CustomRecognizer
	Priority   int  // 0 means "use DefaultPriority"
	Prefer     bool // Deprecated: has no effect; recognizer tie-breaking decides instead
	compiledRe *regexp.Regexp
	reOnce     sync.Once
	reErr      error

	// special sentinels
	special specialSymbol
}

type specialSymbol int

const (
	notSpecial specialSymbol = iota
	emptySpecial
	stopSpecial
)

// IsTerminal reports whether s is a Terminal.
func (s *Symbol) IsTerminal() bool { return s != nil && s.Kind == Terminal }

// IsEmpty reports whether s is the ε sentinel.
func (s *Symbol) IsEmpty() bool { return s != nil && s.special == emptySpecial }

// IsStop reports whether s is the end-of-input sentinel ($/STOP).
func (s *Symbol) IsStop() bool { return s != nil && s.special == stopSpecial }

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

// CompiledRegexp lazily compiles and caches a regexp terminal's pattern.
// The cache is confined to the Symbol and is therefore safe for concurrent
// read-only use once the owning Grammar has been frozen.
func (s *Symbol) CompiledRegexp() (*regexp.Regexp, error) {
	if s.RecKind != RegexKind {
		return nil, fmt.Errorf("symbol %q is not a regexp terminal", s.Name)
	}
	s.reOnce.Do(func() {
		re, err := regexp.Compile(`\A(?:` + s.Pattern + `)`)
		if err != nil {
			s.reErr = fmt.Errorf("terminal %q: bad regexp %q: %w", s.Name, s.Pattern, err)
			return
		}
		s.compiledRe = re
	})
	return s.compiledRe, s.reErr
}
