package recognize

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kynrai/glr/grammar"
)

// terminalProfile is the on-disk shape of a TOML terminal profile: a table
// under the "terminal" key mapping terminal name to recognizer spec, e.g.
//
//	[terminal.NUMBER]
//	kind = "regexp"
//	regexp = "[0-9]+(\\.[0-9]+)?"
//
//	[terminal.PLUS]
//	kind = "string"
//	literal = "+"
//	priority = 1
type terminalProfile struct {
	Terminals map[string]terminalEntry `toml:"terminal"`
}

type terminalEntry struct {
	Kind     string `toml:"kind"`
	Regexp   string `toml:"regexp"`
	Literal  string `toml:"literal"`
	Priority int    `toml:"priority"`
}

// LoadTerminalProfile decodes a TOML document of named regexp/string
// terminal definitions into a terminals_dict-shaped map suitable for
// passing to grammar.FromStruct. It is a
// convenience on top of from_struct for applications that keep their
// terminal vocabulary in a config file rather than Go source; it never
// produces "custom" terminals, since a custom recognizer is a Go function
// and has no textual representation.
//
// Example document:
//
//	[terminal.NUMBER]
//	kind = "regexp"
//	regexp = "[0-9]+(\\.[0-9]+)?"
func LoadTerminalProfile(data []byte) (map[string]grammar.TerminalSpec, error) {
	var profile terminalProfile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("recognize: decoding terminal profile: %w", err)
	}

	out := make(map[string]grammar.TerminalSpec, len(profile.Terminals))
	for name, entry := range profile.Terminals {
		switch entry.Kind {
		case "regexp":
			out[name] = grammar.TerminalSpec{Kind: "regexp", Regexp: entry.Regexp, Priority: entry.Priority}
		case "string":
			out[name] = grammar.TerminalSpec{Kind: "string", Literal: entry.Literal, Priority: entry.Priority}
		default:
			return nil, fmt.Errorf("recognize: terminal %q: unsupported profile kind %q (want %q or %q)", name, entry.Kind, "regexp", "string")
		}
	}
	return out, nil
}

// TerminalDefs converts a terminals_dict-shaped map, such as one produced
// by LoadTerminalProfile, into the ordered []grammar.TerminalDef slice
// grammar.FromStruct expects, in the caller-supplied order (a TOML table
// has no inherent ordering, unlike a
// declaration-order Go literal, and terminal order feeds the Recognizer's
// declaration-order tie-break).
func TerminalDefs(specs map[string]grammar.TerminalSpec, order []string) ([]grammar.TerminalDef, error) {
	defs := make([]grammar.TerminalDef, 0, len(order))
	for _, name := range order {
		spec, ok := specs[name]
		if !ok {
			return nil, fmt.Errorf("recognize: terminal profile has no entry named %q", name)
		}
		defs = append(defs, grammar.TerminalDef{Name: name, Spec: spec})
	}
	return defs, nil
}
