// Package tcgrammar implements the grammar model and the extended-Yacc
// loader. Symbols and productions are value objects held in index-keyed
// slices and referenced by id, never by pointer, so growing the slices
// never invalidates an outstanding reference.
package tcgrammar

import "github.com/dekarrin/toycompile/internal/tctoken"

// SymbolKind distinguishes terminals (which carry a TokenKind) from
// non-terminals.
type SymbolKind int

const (
	Terminal SymbolKind = iota
	NonTerminal
)

// Symbol is a grammar symbol. TokenKind is meaningful only when Kind is
// Terminal. Equality is by ID when ids match; callers comparing symbols from
// different grammars should fall back to structural comparison (Equal).
type Symbol struct {
	ID        int
	Name      string
	Kind      SymbolKind
	TokenKind tctoken.Kind
}

// Equal compares two symbols, preferring id equality but falling back to a
// structural comparison so symbols from different grammar instances can
// still be compared meaningfully.
func (s Symbol) Equal(o Symbol) bool {
	if s.ID == o.ID {
		return true
	}
	return s.Name == o.Name && s.Kind == o.Kind && s.TokenKind == o.TokenKind
}

func (s Symbol) String() string {
	return s.Name
}
