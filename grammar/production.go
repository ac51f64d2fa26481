package grammar

import "strings"

// Production is a rule `LHS -> RHS` with an associated priority and
// associativity used during conflict resolution.
type Production struct {
	Index int
	LHS   *Symbol
	RHS   []*Symbol // may be empty (ε); never contains EMPTY mixed with other symbols

	Priority int
	Assoc    Assoc
}

// IsEpsilon reports whether this production has an empty right-hand side.
func (p *Production) IsEpsilon() bool { return len(p.RHS) == 0 }

// EffectivePriority returns the production's priority, defaulting to its
// rightmost terminal's priority, and finally to DefaultPriority.
func (p *Production) EffectivePriority() int {
	if p.Priority != 0 {
		return p.Priority
	}
	for i := len(p.RHS) - 1; i >= 0; i-- {
		if p.RHS[i].IsTerminal() && !p.RHS[i].IsEmpty() && !p.RHS[i].IsStop() {
			if p.RHS[i].Priority != 0 {
				return p.RHS[i].Priority
			}
			break
		}
	}
	return DefaultPriority
}

// EffectiveAssoc returns the production's associativity, defaulting to
// NoAssoc.
func (p *Production) EffectiveAssoc() Assoc { return p.Assoc }

func (p *Production) String() string {
	var b strings.Builder
	b.WriteString(p.LHS.Name)
	b.WriteString(" ->")
	if len(p.RHS) == 0 {
		b.WriteString(" ε")
	}
	for _, s := range p.RHS {
		b.WriteByte(' ')
		b.WriteString(s.Name)
	}
	return b.String()
}
