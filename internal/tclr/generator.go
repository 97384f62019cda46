package tclr

import (
	"github.com/dekarrin/toycompile/internal/tcerr"
	"github.com/dekarrin/toycompile/internal/tcgrammar"
	"github.com/dekarrin/toycompile/internal/tctoken"
)

// Generate computes the canonical LR(1) Action/Goto table for g. g must
// have an entry symbol set (tcgrammar.Grammar.SetStart).
func Generate(g *tcgrammar.Grammar) (*Table, error) {
	if !g.HasStart() {
		return nil, tcerr.New(tcerr.ErrTable, "grammar has no start symbol set")
	}

	// augmented start S' -> S.
	augName := "$" + g.Symbols[g.StartID].Name + "'"
	augID := g.DeclareSymbol(augName, tcgrammar.NonTerminal)
	augProdID, err := g.AddProduction(augID, []int{g.StartID})
	if err != nil {
		return nil, tcerr.New(tcerr.ErrTable, "failed augmenting grammar", err)
	}

	// fresh EOF terminal for the end-of-input lookahead.
	eofID, ok := g.SymbolByName("$")
	if !ok {
		eofID = g.DeclareSymbol("$", tcgrammar.Terminal)
		g.BindTerminal(eofID, tctoken.EOF)
	}

	first := computeFirstSets(g)

	startItem := Item{ProductionID: augProdID, DotPos: 0, Lookahead: eofID}
	startSet := closure(g, first, []Item{startItem})

	states := []*itemSet{startSet}
	transitions := make(map[int]map[int]int) // state idx -> symbol id -> state idx

	for i := 0; i < len(states); i++ {
		transitions[i] = make(map[int]int)

		symbolsAfterDot := map[int]bool{}
		for _, it := range states[i].items() {
			if sym, ok := it.DotSymbol(g); ok {
				symbolsAfterDot[sym] = true
			}
		}

		for sym := range symbolsAfterDot {
			next := gotoSet(g, first, states[i], sym)
			if next == nil || len(next.items()) == 0 {
				continue
			}

			target := -1
			for j, s := range states {
				if equalItemSets(s, next) {
					target = j
					break
				}
			}
			if target == -1 {
				states = append(states, next)
				target = len(states) - 1
			}
			transitions[i][sym] = target
		}
	}

	t := newTable()
	t.PrimaryStateID = 0
	t.Symbols = append([]tcgrammar.Symbol(nil), g.Symbols...)
	t.Productions = append([]tcgrammar.Production(nil), g.Productions...)

	for i, s := range states {
		for _, it := range s.items() {
			if it.ProductionID == augProdID && it.DotPos == 1 && it.Lookahead == eofID {
				t.set(i, eofID, Command{Type: CmdAccept})
				continue
			}

			if it.IsReduce(g) {
				t.set(i, it.Lookahead, Command{Type: CmdReduce, Production: it.ProductionID})
				continue
			}

			sym, _ := it.DotSymbol(g)
			target, ok := transitions[i][sym]
			if !ok {
				continue
			}
			if g.Symbols[sym].Kind == tcgrammar.Terminal {
				t.set(i, sym, Command{Type: CmdShift, Target: target})
			} else {
				t.set(i, sym, Command{Type: CmdGoto, Target: target})
			}
		}
	}

	return t, nil
}

// computeFirstSets computes FIRST(X) for every symbol by iterative
// fixpoint. Since the grammar forbids empty productions, FIRST(A)
// is simply the union, over every production of A, of FIRST of that
// production's first symbol (terminals are their own FIRST set).
func computeFirstSets(g *tcgrammar.Grammar) map[int]map[int]bool {
	first := make(map[int]map[int]bool)
	for _, s := range g.Symbols {
		first[s.ID] = make(map[int]bool)
		if s.Kind == tcgrammar.Terminal {
			first[s.ID][s.ID] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if len(p.RHS) == 0 {
				continue
			}
			firstSym := p.RHS[0]
			for t := range first[firstSym] {
				if !first[p.TargetID][t] {
					first[p.TargetID][t] = true
					changed = true
				}
			}
		}
	}
	return first
}

// firstOfSequence computes FIRST(beta a): the FIRST set of a symbol
// sequence, falling back to the given lookahead when the sequence is empty.
func firstOfSequence(first map[int]map[int]bool, seq []int, fallback int) map[int]bool {
	if len(seq) == 0 {
		return map[int]bool{fallback: true}
	}
	out := make(map[int]bool)
	for t := range first[seq[0]] {
		out[t] = true
	}
	return out
}

// closure computes the closure of a seed item set: for every item
// [A -> alpha . B beta, a] with B a non-terminal, add
// [B -> . gamma, b] for every production B -> gamma and every
// b in FIRST(beta a).
func closure(g *tcgrammar.Grammar, first map[int]map[int]bool, seed []Item) *itemSet {
	set := newItemSet()
	var worklist []Item
	for _, it := range seed {
		if set.add(it) {
			worklist = append(worklist, it)
		}
	}

	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]

		sym, ok := it.DotSymbol(g)
		if !ok || g.Symbols[sym].Kind != tcgrammar.NonTerminal {
			continue
		}

		p := g.Productions[it.ProductionID]
		beta := p.RHS[it.DotPos+1:]
		lookaheads := firstOfSequence(first, beta, it.Lookahead)

		for _, prod := range g.ProductionsFor(sym) {
			for la := range lookaheads {
				newItem := Item{ProductionID: prod.ID, DotPos: 0, Lookahead: la}
				if set.add(newItem) {
					worklist = append(worklist, newItem)
				}
			}
		}
	}

	return set
}

// gotoSet computes GOTO(I, X): the closure of every item in I whose dot can
// advance across symbol X.
func gotoSet(g *tcgrammar.Grammar, first map[int]map[int]bool, i *itemSet, x int) *itemSet {
	var advanced []Item
	for _, it := range i.items() {
		sym, ok := it.DotSymbol(g)
		if ok && sym == x {
			advanced = append(advanced, Item{ProductionID: it.ProductionID, DotPos: it.DotPos + 1, Lookahead: it.Lookahead})
		}
	}
	if len(advanced) == 0 {
		return nil
	}
	return closure(g, first, advanced)
}
