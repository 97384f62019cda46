package tcgrammar

import (
	"fmt"

	"github.com/dekarrin/toycompile/internal/tctoken"
)

// Production is one alternative of one non-terminal (a flat production):
// `A -> alpha | beta` expands into two Productions sharing the same
// TargetID. Empty right-hand sides are disallowed.
type Production struct {
	ID       int
	TargetID int
	RHS      []int // symbol ids, left to right
}

// Equal compares two productions structurally.
func (p Production) Equal(o Production) bool {
	if p.TargetID != o.TargetID || len(p.RHS) != len(o.RHS) {
		return false
	}
	for i := range p.RHS {
		if p.RHS[i] != o.RHS[i] {
			return false
		}
	}
	return true
}

// Grammar owns the symbol table and flat production list for one loaded
// source grammar. Symbol and production ids are indices into Symbols and
// Productions respectively.
type Grammar struct {
	Symbols     []Symbol
	Productions []Production
	byName      map[string]int
	StartID     int // id of the entry non-terminal (set via SetStart)
	hasStart    bool
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{byName: make(map[string]int)}
}

// Symbol returns the symbol with the given id.
func (g *Grammar) Symbol(id int) Symbol {
	return g.Symbols[id]
}

// SymbolByName returns the id of a previously-declared symbol and true, or
// false if no symbol with that name has been declared.
func (g *Grammar) SymbolByName(name string) (int, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// DeclareSymbol adds a symbol if it doesn't already exist (by name) and
// returns its id either way.
func (g *Grammar) DeclareSymbol(name string, kind SymbolKind) int {
	if id, ok := g.byName[name]; ok {
		return id
	}
	id := len(g.Symbols)
	g.Symbols = append(g.Symbols, Symbol{ID: id, Name: name, Kind: kind})
	g.byName[name] = id
	return id
}

// BindTerminal sets the lexer token kind a terminal symbol resolves to, as
// established by a grammar loader's token-key binding.
func (g *Grammar) BindTerminal(id int, tk tctoken.Kind) {
	g.Symbols[id].TokenKind = tk
}

// AddProduction appends a flat production for the given target non-terminal
// id with the given rhs symbol ids. Empty rhs is rejected.
func (g *Grammar) AddProduction(targetID int, rhs []int) (int, error) {
	if len(rhs) == 0 {
		return -1, fmt.Errorf("empty right-hand side is not allowed for target %q", g.Symbols[targetID].Name)
	}
	id := len(g.Productions)
	g.Productions = append(g.Productions, Production{ID: id, TargetID: targetID, RHS: rhs})
	return id, nil
}

// SetStart sets the grammar's entry non-terminal.
func (g *Grammar) SetStart(id int) {
	g.StartID = id
	g.hasStart = true
}

// HasStart reports whether SetStart has been called.
func (g *Grammar) HasStart() bool {
	return g.hasStart
}

// ProductionsFor returns every production whose target is the given
// non-terminal id.
func (g *Grammar) ProductionsFor(targetID int) []Production {
	var out []Production
	for _, p := range g.Productions {
		if p.TargetID == targetID {
			out = append(out, p)
		}
	}
	return out
}

func (p Production) String(g *Grammar) string {
	s := g.Symbols[p.TargetID].Name + " ->"
	for _, sid := range p.RHS {
		s += " " + g.Symbols[sid].Name
	}
	return s
}
