package tclr

import "github.com/dekarrin/toycompile/internal/tcgrammar"

// CommandType is the closed set of Action/Goto table cell kinds.
type CommandType int

const (
	CmdError CommandType = iota
	CmdAccept
	CmdGoto
	CmdShift
	CmdReduce
)

// Command is a single Action/Goto table cell. Target is used by Goto and
// Shift; Production is used by Reduce. Missing cells implicitly denote
// CmdError.
type Command struct {
	Type       CommandType
	Target     int
	Production int
}

func (c Command) String() string {
	switch c.Type {
	case CmdAccept:
		return "accept"
	case CmdGoto:
		return "goto " + itoa(c.Target)
	case CmdShift:
		return "shift " + itoa(c.Target)
	case CmdReduce:
		return "reduce " + itoa(c.Production)
	default:
		return "error"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

type cellKey struct {
	state  int
	symbol int
}

// Table is the Action/Goto table produced by the generator or loaded from a
// cache file: a primary (initial) state, the symbol/production lists it was
// built against, and a sparse state x symbol -> Command map.
type Table struct {
	PrimaryStateID int
	Symbols        []tcgrammar.Symbol
	Productions    []tcgrammar.Production
	cells          map[cellKey]Command
}

func newTable() *Table {
	return &Table{cells: make(map[cellKey]Command)}
}

// Cell returns the command for (state, symbol), defaulting to CmdError for
// any cell that was never written.
func (t *Table) Cell(state, symbol int) Command {
	if c, ok := t.cells[cellKey{state, symbol}]; ok {
		return c
	}
	return Command{Type: CmdError}
}

// set writes a cell. On overlapping cells the later write wins; there is no
// shift/reduce precedence resolution, and that choice is documented here
// rather than silently picking one convention.
func (t *Table) set(state, symbol int, cmd Command) {
	t.cells[cellKey{state, symbol}] = cmd
}

// NumCells returns how many (state, symbol) pairs have an explicit command,
// used by diagnostics and round-trip tests.
func (t *Table) NumCells() int {
	return len(t.cells)
}

// Cells calls fn for every explicit (state, symbol, command) triple, in
// unspecified order.
func (t *Table) Cells(fn func(state, symbol int, cmd Command)) {
	for k, c := range t.cells {
		fn(k.state, k.symbol, c)
	}
}
