// Package tclr implements the canonical LR(1) item-set/table generator and
// the line-oriented parser table store. Symbols, productions, and states
// are all referenced by id, so table cells and serialized forms never hold
// pointers.
package tclr

import "github.com/dekarrin/toycompile/internal/tcgrammar"

// Item is an LR(1) item: a production, a dot position within its rhs, and a
// lookahead terminal. Equality is structural; items with
// DotPos == len(rhs) are reduce items.
type Item struct {
	ProductionID int
	DotPos       int
	Lookahead    int
}

// key groups an item by production + lookahead, ignoring dot position.
// Closure construction does not deduplicate by it: itemSet keys on the full
// Item, since one state can hold the same (production, lookahead) pair at
// several dot positions.
type key struct {
	production int
	lookahead  int
}

func (it Item) key() key {
	return key{it.ProductionID, it.Lookahead}
}

// IsReduce reports whether the dot has reached the end of the production's
// rhs.
func (it Item) IsReduce(g *tcgrammar.Grammar) bool {
	p := g.Productions[it.ProductionID]
	return it.DotPos >= len(p.RHS)
}

// DotSymbol returns the symbol id immediately after the dot and true, or
// false if the dot is at the end (a reduce item).
func (it Item) DotSymbol(g *tcgrammar.Grammar) (int, bool) {
	p := g.Productions[it.ProductionID]
	if it.DotPos >= len(p.RHS) {
		return 0, false
	}
	return p.RHS[it.DotPos], true
}

// itemSet is an insertion-ordered set of items, deduplicated by
// (production, lookahead, dotpos) triple. A given (production, lookahead)
// pair can appear with more than one dot position in one state (for
// C -> c C, the state after c holds both C -> c.C and C -> .c C), so the map
// is keyed by the full item.
type itemSet struct {
	order []Item
	has   map[Item]bool
}

func newItemSet() *itemSet {
	return &itemSet{has: make(map[Item]bool)}
}

func (s *itemSet) add(it Item) bool {
	if s.has[it] {
		return false
	}
	s.has[it] = true
	s.order = append(s.order, it)
	return true
}

func (s *itemSet) items() []Item {
	return s.order
}

// equalItemSets reports whether two item sets contain exactly the same
// items, order ignored; two LR states are the same state exactly when
// their item sets coincide.
func equalItemSets(a, b *itemSet) bool {
	if len(a.order) != len(b.order) {
		return false
	}
	for _, it := range a.order {
		if !b.has[it] {
			return false
		}
	}
	return true
}
